package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
)

func TestSummarize(t *testing.T) {
	first, last := "2023-05-01", "2025-01-07"
	pushed := time.Date(2025, 1, 7, 18, 30, 0, 0, time.FixedZone("JST", 9*3600))
	rd := &domain.RepoDaily{
		Repo: &domain.Repository{
			ID:           9,
			Owner:        "acme",
			Name:         "cadence",
			LastPushedAt: &pushed,
		},
		Daily:           window(t, 1, 0, 0, 1, 1, 0, 1),
		FirstCommitDate: &first,
		LastCommitDate:  &last,
		NetLoc:          -120,
	}

	summary, err := NewSummarizer(nil).Summarize(rd, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(9), summary.ID)
	assert.Equal(t, 4, summary.TotalCommits)
	assert.Equal(t, 4, summary.ActiveDays)
	assert.Equal(t, 2, summary.MaxGap)
	assert.Equal(t, 2, summary.LongestStreak)
	assert.InDelta(t, 0.7857, summary.Regularity, 1e-9)
	assert.Equal(t, &first, summary.FirstCommitDate)
	assert.Equal(t, &last, summary.LastCommitDate)
	require.NotNil(t, summary.LastPushedAt)
	assert.Equal(t, "2025-01-07T09:30:00Z", *summary.LastPushedAt)
	assert.Equal(t, int64(-120), summary.NetLoc)
}

func TestSummarizeRepoWithoutHistory(t *testing.T) {
	rd := &domain.RepoDaily{
		Repo:  &domain.Repository{ID: 1, Owner: "acme", Name: "empty"},
		Daily: window(t, repeat(0, 10)...),
	}

	summary, err := NewSummarizer(nil).Summarize(rd, 10)
	require.NoError(t, err)

	assert.Zero(t, summary.TotalCommits)
	assert.Zero(t, summary.Regularity)
	assert.Equal(t, 10, summary.MaxGap)
	assert.Zero(t, summary.LongestStreak)
	assert.Nil(t, summary.FirstCommitDate)
	assert.Nil(t, summary.LastPushedAt)
}
