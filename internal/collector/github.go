package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
)

// Minimum spacing between GitHub API calls
const defaultMinDelay = 100 * time.Millisecond

// githubCollector implements Collector using GitHub API
type githubCollector struct {
	client      *github.Client
	rateLimiter RateLimiter
}

// NewGitHubCollector creates a new GitHub collector
func NewGitHubCollector(token string) Collector {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return NewGitHubCollectorWithClient(github.NewClient(tc), NewRateLimiter(defaultMinDelay))
}

// NewGitHubCollectorWithClient creates a collector around an existing client
func NewGitHubCollectorWithClient(client *github.Client, limiter RateLimiter) Collector {
	if limiter == nil {
		limiter = NewRateLimiter(defaultMinDelay)
	}
	return &githubCollector{
		client:      client,
		rateLimiter: limiter,
	}
}

// GetRepository retrieves repository metadata, including the last push time
func (c *githubCollector) GetRepository(ctx context.Context, owner, name string) (*RepoInfo, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	repo, resp, err := c.client.Repositories.Get(ctx, owner, name)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, translateError(resp, fmt.Sprintf("repository %s/%s", owner, name), err)
	}

	info := &RepoInfo{
		Owner:       owner,
		Name:        name,
		Description: repo.GetDescription(),
	}
	if repo.PushedAt != nil {
		pushed := repo.PushedAt.UTC()
		info.PushedAt = &pushed
	}
	return info, nil
}

// GetCommits retrieves commits for a repository
func (c *githubCollector) GetCommits(ctx context.Context, owner, name string, since, until time.Time) ([]*domain.CommitEvent, error) {
	var allCommits []*domain.CommitEvent
	opts := &github.CommitsListOptions{
		Since:       since,
		Until:       until,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		commits, resp, err := c.client.Repositories.ListCommits(ctx, owner, name, opts)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			// Empty repositories answer 409 Conflict
			if resp != nil && resp.StatusCode == http.StatusConflict {
				return allCommits, nil
			}
			return nil, translateError(resp, fmt.Sprintf("commits of %s/%s", owner, name), err)
		}

		for _, commit := range commits {
			event := &domain.CommitEvent{Sha: commit.GetSHA()}
			if commit.Author != nil {
				event.Author = commit.Author.GetLogin()
			}
			if commit.Commit != nil && commit.Commit.Author != nil {
				if event.Author == "" {
					event.Author = commit.Commit.Author.GetName()
				}
				event.Timestamp = commit.Commit.Author.GetDate().Time
			}
			allCommits = append(allCommits, event)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allCommits, nil
}

// GetDailyCommits retrieves commits and counts them per UTC day
func (c *githubCollector) GetDailyCommits(ctx context.Context, owner, name string, since, until time.Time) ([]domain.DailyCommitRecord, error) {
	commits, err := c.GetCommits(ctx, owner, name, since, until)
	if err != nil {
		return nil, err
	}
	return domain.BucketByDay(commits), nil
}

// GetNetLoc sums weekly additions and deletions from the code frequency statistics
func (c *githubCollector) GetNetLoc(ctx context.Context, owner, name string) (*int64, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	weeks, resp, err := c.client.Repositories.ListCodeFrequency(ctx, owner, name)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			return nil, nil
		}
		return nil, translateError(resp, fmt.Sprintf("code frequency of %s/%s", owner, name), err)
	}
	if resp != nil && resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var net int64
	for _, w := range weeks {
		net += int64(w.GetAdditions())
		// deletions are reported as negative numbers
		net -= abs(int64(w.GetDeletions()))
	}
	return &net, nil
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (c *githubCollector) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Limit > 0 {
		c.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

// translateError maps GitHub failures onto application errors
func translateError(resp *github.Response, what string, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRateLimitedError(rateErr.Message)
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return apperrors.NewNotFoundError(what)
		case http.StatusUnauthorized:
			return apperrors.NewUnauthorizedError("GitHub rejected the token")
		}
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
