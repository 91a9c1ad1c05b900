package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kurihiro0119/commit-cadence/internal/aggregator"
	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
	"github.com/kurihiro0119/commit-cadence/internal/logger"
	"github.com/kurihiro0119/commit-cadence/internal/ranking"
)

// DefaultRepoDailyDays is the window of GET /repos/:id/daily when days is omitted
const DefaultRepoDailyDays = 90

// Handler handles API requests
type Handler struct {
	aggregator  aggregator.Aggregator
	version     string
	defaultDays int
}

// NewHandler creates a new API handler. defaultDays is the window of the
// comparison endpoints when the request names none.
func NewHandler(agg aggregator.Aggregator, version string, defaultDays int) *Handler {
	if defaultDays <= 0 {
		defaultDays = 360
	}
	return &Handler{
		aggregator:  agg,
		version:     version,
		defaultDays: defaultDays,
	}
}

// GetStats returns the comparison table of every repository
// GET /api/v1/stats?days=360&sort=name&dir=asc
func (h *Handler) GetStats(c *gin.Context) {
	days, err := parseDays(c, h.defaultDays)
	if err != nil {
		respondError(c, err)
		return
	}
	field, err := ranking.ParseSortField(c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}
	direction, err := ranking.ParseSortDirection(c.Query("dir"))
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.aggregator.CompareRepos(c.Request.Context(), days, field, direction)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// GetAllDaily returns the dense window of every repository
// GET /api/v1/daily?days=360
func (h *Handler) GetAllDaily(c *gin.Context) {
	days, err := parseDays(c, h.defaultDays)
	if err != nil {
		respondError(c, err)
		return
	}

	dailies, err := h.aggregator.GetAllDaily(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": dailies,
	})
}

// RepoDailyResponse is the payload of GET /repos/:id/daily
type RepoDailyResponse struct {
	Repo  domain.RepoRef             `json:"repo"`
	Daily []domain.DailyCommitRecord `json:"daily"`
}

// GetRepoDaily returns one repository's dense window
// GET /api/v1/repos/:id/daily?days=90
func (h *Handler) GetRepoDaily(c *gin.Context) {
	id, err := parseRepoID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	days, err := parseDays(c, DefaultRepoDailyDays)
	if err != nil {
		respondError(c, err)
		return
	}

	rd, err := h.aggregator.GetRepoDaily(c.Request.Context(), id, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": RepoDailyResponse{Repo: rd.Repo.Ref(), Daily: rd.Daily},
	})
}

// GetRepoStory returns the story of one repository
// GET /api/v1/repos/:id/story?windows=30,90
func (h *Handler) GetRepoStory(c *gin.Context) {
	id, err := parseRepoID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	windows, err := aggregator.ParseWindows(c.Query("windows"))
	if err != nil {
		respondError(c, err)
		return
	}

	story, err := h.aggregator.GetRepoStory(c.Request.Context(), id, windows)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": story,
	})
}

// GetVersion returns the build version
// GET /api/v1/version
func (h *Handler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"version": h.version},
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// parseDays reads the days query parameter, rejecting anything outside 1..365
func parseDays(c *gin.Context, defaultValue int) (int, error) {
	valueStr := c.Query("days")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, aggregator.ValidateDays(0)
	}
	return value, aggregator.ValidateDays(value)
}

func parseRepoID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError("Invalid repo ID")
	}
	return id, nil
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeInvalidInput:
			status = http.StatusUnprocessableEntity
		case apperrors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		}
		if status >= http.StatusInternalServerError || appErr.Code == apperrors.ErrCodeInvalidInput {
			logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrCodeInternal,
			"message": "internal server error",
		},
	})
}
