package stats

import (
	"math"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
)

// Default regularity constants
const (
	DefaultBucketWidthDays = 7
	DefaultActivityWeight  = 0.5
	DefaultCoverageWeight  = 0.5
)

// RegularityConfig controls how the regularity score blends the share of
// active days with the share of buckets that saw any activity.
type RegularityConfig struct {
	BucketWidthDays int
	ActivityWeight  float64
	CoverageWeight  float64
}

// DefaultRegularityConfig returns weekly buckets with an even blend
func DefaultRegularityConfig() RegularityConfig {
	return RegularityConfig{
		BucketWidthDays: DefaultBucketWidthDays,
		ActivityWeight:  DefaultActivityWeight,
		CoverageWeight:  DefaultCoverageWeight,
	}
}

// Validate rejects configurations that cannot produce a score
func (c RegularityConfig) Validate() error {
	if c.BucketWidthDays < 1 {
		return apperrors.NewInvalidInputError("regularity bucket width must be at least 1 day, got %d", c.BucketWidthDays)
	}
	if c.ActivityWeight < 0 || c.CoverageWeight < 0 {
		return apperrors.NewInvalidInputError("regularity weights must not be negative")
	}
	if c.ActivityWeight == 0 && c.CoverageWeight == 0 {
		return apperrors.NewInvalidInputError("at least one regularity weight must be positive")
	}
	return nil
}

// RegularityScorer scores how evenly commits are spread across a window
type RegularityScorer struct {
	cfg RegularityConfig
}

// NewRegularityScorer creates a scorer for the given configuration
func NewRegularityScorer(cfg RegularityConfig) (*RegularityScorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RegularityScorer{cfg: cfg}, nil
}

var defaultScorer = &RegularityScorer{cfg: DefaultRegularityConfig()}

// Regularity scores records with the default configuration
func Regularity(records []domain.DailyCommitRecord, days int) (float64, error) {
	return defaultScorer.Score(records, days)
}

// Config returns the scorer's configuration
func (s *RegularityScorer) Config() RegularityConfig {
	return s.cfg
}

// Score returns a value in [0, 1] rounded to four decimals. days is the window
// length and must match len(records); an empty window scores 0.
func (s *RegularityScorer) Score(records []domain.DailyCommitRecord, days int) (float64, error) {
	if days < 0 {
		return 0, apperrors.NewInvalidInputError("window length must not be negative, got %d", days)
	}
	if len(records) != days {
		return 0, apperrors.NewInvalidInputError("window of %d days has %d records", days, len(records))
	}
	if err := ValidateWindow(records); err != nil {
		return 0, err
	}
	if days == 0 {
		return 0, nil
	}

	_, active := countActive(records)
	activeRatio := float64(active) / float64(days)

	width := s.cfg.BucketWidthDays
	buckets := (days + width - 1) / width
	covered := 0
	for b := 0; b < buckets; b++ {
		end := min((b+1)*width, days)
		for _, r := range records[b*width : end] {
			if r.Commits > 0 {
				covered++
				break
			}
		}
	}
	coverage := float64(covered) / float64(buckets)

	score := s.cfg.ActivityWeight*activeRatio + s.cfg.CoverageWeight*coverage
	score = math.Round(score*10000) / 10000
	return math.Max(0, math.Min(1, score)), nil
}
