package stats

import (
	"github.com/kurihiro0119/commit-cadence/internal/domain"
)

// Second-half volume must move more than 10% away from the first half to count as a trend
const (
	trendRiseFactor = 1.1
	trendFallFactor = 0.9
)

// WindowInput is one dense window handed to StoryGenerator.Story
type WindowInput struct {
	Days    int
	Records []domain.DailyCommitRecord
}

// StoryGenerator builds narrative summaries for one or more windows
type StoryGenerator struct {
	scorer *RegularityScorer
}

// NewStoryGenerator creates a generator scoring regularity with scorer
func NewStoryGenerator(scorer *RegularityScorer) *StoryGenerator {
	if scorer == nil {
		scorer = defaultScorer
	}
	return &StoryGenerator{scorer: scorer}
}

// Window computes the story for a single dense window of length days
func (g *StoryGenerator) Window(records []domain.DailyCommitRecord, days int) (domain.WindowStory, error) {
	regularity, err := g.scorer.Score(records, days)
	if err != nil {
		return domain.WindowStory{}, err
	}
	gap, err := MaxGap(records)
	if err != nil {
		return domain.WindowStory{}, err
	}
	streak, err := LongestStreak(records)
	if err != nil {
		return domain.WindowStory{}, err
	}

	total, active := countActive(records)
	mid := days / 2
	firstHalf, _ := countActive(records[:mid])
	secondHalf := total - firstHalf

	return domain.WindowStory{
		WindowDays:        days,
		TotalCommits:      total,
		ActiveDays:        active,
		LongestStreak:     streak,
		MaxGap:            gap,
		Regularity:        regularity,
		FirstHalfCommits:  firstHalf,
		SecondHalfCommits: secondHalf,
		Trend:             ClassifyTrend(firstHalf, secondHalf),
	}, nil
}

// Story computes every window for repo, in the order given
func (g *StoryGenerator) Story(repo *domain.Repository, windows []WindowInput) (*domain.StorySummary, error) {
	summary := &domain.StorySummary{
		ID:          repo.ID,
		Owner:       repo.Owner,
		Name:        repo.Name,
		DisplayName: repo.DisplayName,
		Windows:     make([]domain.WindowStory, 0, len(windows)),
	}
	for _, w := range windows {
		story, err := g.Window(w.Records, w.Days)
		if err != nil {
			return nil, err
		}
		summary.Windows = append(summary.Windows, story)
	}
	return summary, nil
}

// ClassifyTrend compares second-half commits against the first half
func ClassifyTrend(firstHalf, secondHalf int) domain.Trend {
	first, second := float64(firstHalf), float64(secondHalf)
	switch {
	case second > first*trendRiseFactor:
		return domain.TrendIncreasing
	case second < first*trendFallFactor:
		return domain.TrendDecreasing
	default:
		return domain.TrendFlat
	}
}
