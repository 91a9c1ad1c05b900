package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
)

// Client is the API client for commit-cadence
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RepoDaily is the payload of GET /api/v1/repos/:id/daily
type RepoDaily struct {
	Repo  domain.RepoRef             `json:"repo"`
	Daily []domain.DailyCommitRecord `json:"daily"`
}

// GetStats retrieves the comparison table. Zero or empty arguments use the server defaults.
func (c *Client) GetStats(ctx context.Context, days int, field domain.SortField, direction domain.SortDirection) (*domain.ComparisonStats, error) {
	params := daysParams(days)
	if field != "" {
		params.Set("sort", string(field))
	}
	if direction != "" {
		params.Set("dir", string(direction))
	}

	var response struct {
		Data *domain.ComparisonStats `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/stats", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetAllDaily retrieves every repository's dense window
func (c *Client) GetAllDaily(ctx context.Context, days int) ([]*domain.RepoDaily, error) {
	var response struct {
		Data []*domain.RepoDaily `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/daily", daysParams(days), &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRepoDaily retrieves one repository's dense window
func (c *Client) GetRepoDaily(ctx context.Context, id int64, days int) (*RepoDaily, error) {
	path := fmt.Sprintf("/api/v1/repos/%d/daily", id)

	var response struct {
		Data *RepoDaily `json:"data"`
	}
	if err := c.get(ctx, path, daysParams(days), &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRepoStory retrieves the story of one repository across windows
func (c *Client) GetRepoStory(ctx context.Context, id int64, windows []int) (*domain.StorySummary, error) {
	path := fmt.Sprintf("/api/v1/repos/%d/story", id)
	params := url.Values{}
	if len(windows) > 0 {
		parts := make([]string, len(windows))
		for i, w := range windows {
			parts[i] = strconv.Itoa(w)
		}
		params.Set("windows", strings.Join(parts, ","))
	}

	var response struct {
		Data *domain.StorySummary `json:"data"`
	}
	if err := c.get(ctx, path, params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetVersion retrieves the server build version
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	var response struct {
		Data struct {
			Version string `json:"version"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/version", nil, &response); err != nil {
		return "", err
	}
	return response.Data.Version, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck(ctx context.Context) error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func daysParams(days int) url.Values {
	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decodeError(resp, body)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// decodeError turns an error envelope back into an AppError when possible
func decodeError(resp *http.Response, body []byte) error {
	var envelope struct {
		Error struct {
			Code    apperrors.ErrCode `json:"code"`
			Message string            `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		return &apperrors.AppError{Code: envelope.Error.Code, Message: envelope.Error.Message}
	}
	return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
}
