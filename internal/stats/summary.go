package stats

import (
	"time"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
)

// Summarizer turns a repository's window into a comparison row
type Summarizer struct {
	scorer *RegularityScorer
}

// NewSummarizer creates a summarizer scoring regularity with scorer
func NewSummarizer(scorer *RegularityScorer) *Summarizer {
	if scorer == nil {
		scorer = defaultScorer
	}
	return &Summarizer{scorer: scorer}
}

// Summarize computes the RepoSummary of rd over a window of days
func (s *Summarizer) Summarize(rd *domain.RepoDaily, days int) (domain.RepoSummary, error) {
	regularity, err := s.scorer.Score(rd.Daily, days)
	if err != nil {
		return domain.RepoSummary{}, err
	}
	gap, err := MaxGap(rd.Daily)
	if err != nil {
		return domain.RepoSummary{}, err
	}
	streak, err := LongestStreak(rd.Daily)
	if err != nil {
		return domain.RepoSummary{}, err
	}
	total, active := countActive(rd.Daily)

	var pushedAt *string
	if rd.Repo.LastPushedAt != nil {
		v := rd.Repo.LastPushedAt.UTC().Format(time.RFC3339)
		pushedAt = &v
	}

	return domain.RepoSummary{
		ID:              rd.Repo.ID,
		Owner:           rd.Repo.Owner,
		Name:            rd.Repo.Name,
		DisplayName:     rd.Repo.DisplayName,
		TotalCommits:    total,
		ActiveDays:      active,
		Regularity:      regularity,
		MaxGap:          gap,
		LongestStreak:   streak,
		FirstCommitDate: rd.FirstCommitDate,
		LastCommitDate:  rd.LastCommitDate,
		LastPushedAt:    pushedAt,
		NetLoc:          rd.NetLoc,
	}, nil
}
