// Package ranking orders repository summaries for comparison views.
package ranking

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
)

// ParseSortField maps a request value to a SortField. Empty selects name.
func ParseSortField(s string) (domain.SortField, error) {
	switch domain.SortField(s) {
	case "":
		return domain.SortByName, nil
	case domain.SortByName, domain.SortByFirstCommitDate, domain.SortByTotalCommits, domain.SortByLastCommitDate:
		return domain.SortField(s), nil
	default:
		return "", apperrors.NewBadRequestError("sort must be one of: name, firstCommitDate, totalCommits, lastCommitDate")
	}
}

// ParseSortDirection maps a request value to a SortDirection. Empty selects asc.
func ParseSortDirection(s string) (domain.SortDirection, error) {
	switch domain.SortDirection(strings.ToLower(s)) {
	case "", domain.SortAsc:
		return domain.SortAsc, nil
	case domain.SortDesc:
		return domain.SortDesc, nil
	default:
		return "", apperrors.NewBadRequestError("dir must be asc or desc")
	}
}

// SortRepoSummaries returns a stably sorted copy of repos.
//
// Missing commit dates sort after present ones in ascending order. desc is the
// negated ascending comparison, so missing dates come first under desc.
func SortRepoSummaries(repos []domain.RepoSummary, field domain.SortField, direction domain.SortDirection) []domain.RepoSummary {
	sorted := make([]domain.RepoSummary, len(repos))
	copy(sorted, repos)

	// Collators keep per-call buffers and are not safe to share.
	col := collate.New(language.Und)
	compare := func(a, b *domain.RepoSummary) int {
		switch field {
		case domain.SortByName:
			return col.CompareString(
				strings.ToLower(a.Owner+"/"+a.Name),
				strings.ToLower(b.Owner+"/"+b.Name),
			)
		case domain.SortByFirstCommitDate:
			return compareNullableDates(a.FirstCommitDate, b.FirstCommitDate)
		case domain.SortByTotalCommits:
			return a.TotalCommits - b.TotalCommits
		case domain.SortByLastCommitDate:
			if a.LastCommitDate == nil || b.LastCommitDate == nil {
				return compareNullableDates(a.LastCommitDate, b.LastCommitDate)
			}
			if c := strings.Compare(*a.LastCommitDate, *b.LastCommitDate); c != 0 {
				return c
			}
			return strings.Compare(valueOrEmpty(a.LastPushedAt), valueOrEmpty(b.LastPushedAt))
		}
		return 0
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(&sorted[i], &sorted[j])
		if direction == domain.SortDesc {
			c = -c
		}
		return c < 0
	})
	return sorted
}

func compareNullableDates(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return strings.Compare(*a, *b)
	}
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
