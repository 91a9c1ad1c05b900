package domain

import (
	"sort"
	"time"
)

// CommitEvent is a single commit as reported by the collector
type CommitEvent struct {
	Sha       string
	Author    string
	Timestamp time.Time
}

// BucketByDay counts commits per UTC calendar day and returns the sparse,
// ascending sequence of days that had at least one commit.
func BucketByDay(commits []*CommitEvent) []DailyCommitRecord {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[c.Timestamp.UTC().Format(DayLayout)]++
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	records := make([]DailyCommitRecord, 0, len(days))
	for _, day := range days {
		records = append(records, DailyCommitRecord{Day: day, Commits: counts[day]})
	}
	return records
}
