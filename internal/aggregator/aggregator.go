package aggregator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
	"github.com/kurihiro0119/commit-cadence/internal/logger"
	"github.com/kurihiro0119/commit-cadence/internal/ranking"
	"github.com/kurihiro0119/commit-cadence/internal/stats"
	"github.com/kurihiro0119/commit-cadence/internal/storage"
)

const (
	// MaxDays is the longest window served
	MaxDays = 365
	// DefaultWorkers bounds per-repository fan-out when no option is given
	DefaultWorkers = 4
)

// DefaultStoryWindows are the window lengths used when none are requested
var DefaultStoryWindows = []int{30, 90}

// Aggregator defines the interface for turning stored daily counts into comparison views
type Aggregator interface {
	// CompareRepos summarizes every repository over days and orders the rows
	CompareRepos(ctx context.Context, days int, field domain.SortField, direction domain.SortDirection) (*domain.ComparisonStats, error)

	// GetAllDaily returns every repository's dense window
	GetAllDaily(ctx context.Context, days int) ([]*domain.RepoDaily, error)

	// GetRepoDaily returns one repository's dense window
	GetRepoDaily(ctx context.Context, id int64, days int) (*domain.RepoDaily, error)

	// GetRepoStory returns the story of one repository across windows
	GetRepoStory(ctx context.Context, id int64, windows []int) (*domain.StorySummary, error)
}

// Option configures an aggregator
type Option func(*aggregator)

// WithWorkers bounds the number of repositories processed concurrently
func WithWorkers(n int) Option {
	return func(a *aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithClock overrides the source of "today"
func WithClock(now func() time.Time) Option {
	return func(a *aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithRegularityScorer scores regularity with scorer instead of the defaults
func WithRegularityScorer(scorer *stats.RegularityScorer) Option {
	return func(a *aggregator) {
		a.scorer = scorer
	}
}

// aggregator implements the Aggregator interface
type aggregator struct {
	storage    storage.Storage
	workers    int
	now        func() time.Time
	scorer     *stats.RegularityScorer
	summarizer *stats.Summarizer
	stories    *stats.StoryGenerator
}

// NewAggregator creates a new aggregator
func NewAggregator(storage storage.Storage, opts ...Option) Aggregator {
	a := &aggregator{
		storage: storage,
		workers: DefaultWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.summarizer = stats.NewSummarizer(a.scorer)
	a.stories = stats.NewStoryGenerator(a.scorer)
	return a
}

// ValidateDays checks a requested window length
func ValidateDays(days int) error {
	if days < 1 || days > MaxDays {
		return apperrors.NewBadRequestError(fmt.Sprintf("Invalid days parameter (must be 1-%d)", MaxDays))
	}
	return nil
}

// ParseWindows parses a comma separated list such as "30,90".
// An empty string yields DefaultStoryWindows.
func ParseWindows(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return append([]int(nil), DefaultStoryWindows...), nil
	}

	parts := strings.Split(s, ",")
	windows := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("Invalid window %q", p))
		}
		if err := ValidateDays(n); err != nil {
			return nil, err
		}
		windows = append(windows, n)
	}
	return windows, nil
}

// CompareRepos summarizes every repository over days and orders the rows
func (a *aggregator) CompareRepos(ctx context.Context, days int, field domain.SortField, direction domain.SortDirection) (*domain.ComparisonStats, error) {
	dailies, err := a.GetAllDaily(ctx, days)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.RepoSummary, len(dailies))
	for i, rd := range dailies {
		summary, err := a.summarizer.Summarize(rd, days)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize %s: %w", rd.Repo.FullName(), err)
		}
		summaries[i] = summary
	}

	return &domain.ComparisonStats{
		Period: fmt.Sprintf("%dd", days),
		Repos:  ranking.SortRepoSummaries(summaries, field, direction),
	}, nil
}

// GetAllDaily loads every repository's window in parallel, keeping repository order
func (a *aggregator) GetAllDaily(ctx context.Context, days int) ([]*domain.RepoDaily, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	repos, err := a.storage.GetRepositories(ctx)
	if err != nil {
		return nil, err
	}

	today := a.today()
	results := make([]*domain.RepoDaily, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			rd, err := a.loadRepoDaily(gctx, repo, days, today)
			if err != nil {
				return err
			}
			results[i] = rd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Loaded daily windows",
		zap.Int("repos", len(results)),
		zap.Int("days", days),
	)
	return results, nil
}

// GetRepoDaily returns one repository's dense window
func (a *aggregator) GetRepoDaily(ctx context.Context, id int64, days int) (*domain.RepoDaily, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	repo, err := a.storage.GetRepositoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.loadRepoDaily(ctx, repo, days, a.today())
}

// GetRepoStory returns the story of one repository across windows.
// The longest window is loaded once and shorter windows are its most recent days.
func (a *aggregator) GetRepoStory(ctx context.Context, id int64, windows []int) (*domain.StorySummary, error) {
	if len(windows) == 0 {
		windows = DefaultStoryWindows
	}
	longest := 0
	for _, w := range windows {
		if err := ValidateDays(w); err != nil {
			return nil, err
		}
		longest = max(longest, w)
	}

	repo, err := a.storage.GetRepositoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := a.storage.GetDailyCommits(ctx, repo.ID, longest, a.today())
	if err != nil {
		return nil, err
	}
	if len(records) != longest {
		return nil, apperrors.NewInternalError("storage returned a window of the wrong length", nil)
	}

	inputs := make([]stats.WindowInput, len(windows))
	for i, w := range windows {
		inputs[i] = stats.WindowInput{Days: w, Records: records[longest-w:]}
	}
	return a.stories.Story(repo, inputs)
}

func (a *aggregator) loadRepoDaily(ctx context.Context, repo *domain.Repository, days int, today time.Time) (*domain.RepoDaily, error) {
	daily, err := a.storage.GetDailyCommits(ctx, repo.ID, days, today)
	if err != nil {
		return nil, err
	}
	bounds, err := a.storage.GetCommitBounds(ctx, repo.ID)
	if err != nil {
		return nil, err
	}

	return &domain.RepoDaily{
		Repo:            repo,
		Daily:           daily,
		FirstCommitDate: bounds.First,
		LastCommitDate:  bounds.Last,
		NetLoc:          repo.NetLoc,
	}, nil
}

func (a *aggregator) today() time.Time {
	return a.now().UTC()
}
