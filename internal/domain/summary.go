package domain

// RepoSummary is the per-repository row of a comparison view
type RepoSummary struct {
	ID              int64   `json:"id"`
	Owner           string  `json:"owner"`
	Name            string  `json:"name"`
	DisplayName     *string `json:"displayName"`
	TotalCommits    int     `json:"totalCommits"`
	ActiveDays      int     `json:"activeDays"`
	Regularity      float64 `json:"regularity"`
	MaxGap          int     `json:"maxGap"`
	LongestStreak   int     `json:"longestStreak"`
	FirstCommitDate *string `json:"firstCommitDate"`
	LastCommitDate  *string `json:"lastCommitDate"`
	LastPushedAt    *string `json:"lastPushedAt"`
	NetLoc          int64   `json:"netLoc"`
}

// ComparisonStats is the comparison view for one period
type ComparisonStats struct {
	Period string        `json:"period"`
	Repos  []RepoSummary `json:"repos"`
}
