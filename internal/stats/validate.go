package stats

import (
	"time"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
)

// ValidateWindow checks that records are well-formed, strictly ascending by day
// and carry non-negative commit counts.
func ValidateWindow(records []domain.DailyCommitRecord) error {
	prev := ""
	for i, r := range records {
		if _, err := time.Parse(domain.DayLayout, r.Day); err != nil {
			return apperrors.NewInvalidInputError("record %d: day %q is not a YYYY-MM-DD date", i, r.Day)
		}
		if r.Commits < 0 {
			return apperrors.NewInvalidInputError("record %d: negative commit count %d on %s", i, r.Commits, r.Day)
		}
		if i > 0 && r.Day <= prev {
			return apperrors.NewInvalidInputError("record %d: day %s does not follow %s", i, r.Day, prev)
		}
		prev = r.Day
	}
	return nil
}

// countActive returns the total commits and the number of days with commits
func countActive(records []domain.DailyCommitRecord) (total, active int) {
	for _, r := range records {
		total += r.Commits
		if r.Commits > 0 {
			active++
		}
	}
	return total, active
}

// longestRun returns the length of the longest consecutive run of records matching match
func longestRun(records []domain.DailyCommitRecord, match func(domain.DailyCommitRecord) bool) int {
	longest, current := 0, 0
	for _, r := range records {
		if !match(r) {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}
