package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketByDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	commits := []*CommitEvent{
		{Sha: "c", Timestamp: time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)},
		{Sha: "a", Timestamp: time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC)},
		// 2025-03-02 08:00 in Tokyo is still 2025-03-01 in UTC
		{Sha: "b", Timestamp: time.Date(2025, 3, 2, 8, 0, 0, 0, tokyo)},
		{Sha: "d", Timestamp: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
	}

	assert.Equal(t, []DailyCommitRecord{
		{Day: "2025-03-01", Commits: 2},
		{Day: "2025-03-02", Commits: 1},
		{Day: "2025-03-05", Commits: 1},
	}, BucketByDay(commits))
}

func TestBucketByDay_Empty(t *testing.T) {
	assert.Empty(t, BucketByDay(nil))
}

func TestRepositoryIdentity(t *testing.T) {
	r := &Repository{ID: 3, Owner: "acme", Name: "api"}
	assert.Equal(t, "acme/api", r.FullName())
	assert.Equal(t, RepoRef{ID: 3, Owner: "acme", Name: "api"}, r.Ref())
}
