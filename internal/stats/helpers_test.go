package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
)

// window builds a dense sequence starting at 2025-01-01 with the given counts
func window(t *testing.T, commits ...int) []domain.DailyCommitRecord {
	t.Helper()
	start, err := time.Parse(domain.DayLayout, "2025-01-01")
	require.NoError(t, err)

	records := make([]domain.DailyCommitRecord, len(commits))
	for i, c := range commits {
		records[i] = domain.DailyCommitRecord{
			Day:     start.AddDate(0, 0, i).Format(domain.DayLayout),
			Commits: c,
		}
	}
	return records
}

func repeat(value, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = value
	}
	return out
}
