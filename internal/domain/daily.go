package domain

// DayLayout is the ISO 8601 calendar-date layout used for DailyCommitRecord.Day
const DayLayout = "2006-01-02"

// DailyCommitRecord is the number of commits a repository received on one calendar day
type DailyCommitRecord struct {
	Day     string `json:"day" db:"day" parquet:"day"`
	Commits int    `json:"commits" db:"commits" parquet:"commits"`
}

// RepoDaily bundles a repository with its dense daily window and whole-history bounds
type RepoDaily struct {
	Repo            *Repository         `json:"repo"`
	Daily           []DailyCommitRecord `json:"daily"`
	FirstCommitDate *string             `json:"firstCommitDate"`
	LastCommitDate  *string             `json:"lastCommitDate"`
	NetLoc          int64               `json:"netLoc"`
}

// CommitBounds holds the first and last day with commits across a repository's history.
// Both are nil when the repository has no commits at all.
type CommitBounds struct {
	First *string `db:"first_day"`
	Last  *string `db:"last_day"`
}
