package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(RequestID())
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/version", handler.GetVersion)
		v1.GET("/stats", handler.GetStats)
		v1.GET("/daily", handler.GetAllDaily)

		repos := v1.Group("/repos/:id")
		{
			repos.GET("/daily", handler.GetRepoDaily)
			repos.GET("/story", handler.GetRepoStory)
		}
	}

	return router
}
