package domain

// Trend describes how commit volume moved between the two halves of a window
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendFlat       Trend = "flat"
)

// WindowStory holds the narrative statistics for one window length
type WindowStory struct {
	WindowDays        int     `json:"windowDays"`
	TotalCommits      int     `json:"totalCommits"`
	ActiveDays        int     `json:"activeDays"`
	LongestStreak     int     `json:"longestStreak"`
	MaxGap            int     `json:"maxGap"`
	Regularity        float64 `json:"regularity"`
	FirstHalfCommits  int     `json:"firstHalfCommits"`
	SecondHalfCommits int     `json:"secondHalfCommits"`
	Trend             Trend   `json:"trend"`
}

// StorySummary collects window stories for a single repository
type StorySummary struct {
	ID          int64         `json:"id"`
	Owner       string        `json:"owner"`
	Name        string        `json:"name"`
	DisplayName *string       `json:"displayName"`
	Windows     []WindowStory `json:"windows"`
}
