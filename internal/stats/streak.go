package stats

import "github.com/kurihiro0119/commit-cadence/internal/domain"

// LongestStreak returns the length of the longest run of consecutive days with commits
func LongestStreak(records []domain.DailyCommitRecord) (int, error) {
	if err := ValidateWindow(records); err != nil {
		return 0, err
	}
	return longestRun(records, func(r domain.DailyCommitRecord) bool { return r.Commits > 0 }), nil
}
