package api

import (
	"github.com/concave-dev/orderpace/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

// Configures all API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// Prometheus scrape endpoint, outside the versioned API
	router.GET("/metrics", gin.WrapH(s.engine.Metrics().Handler()))

	// API version prefix
	v1 := router.Group("/api/v1")

	// Health check endpoint
	v1.GET("/health", s.getHandlerHealth())

	// Batch task endpoints
	tasks := v1.Group("/tasks")
	{
		tasks.POST("", s.limitBody(), handlers.SubmitTask(s.engine, s.defaults))
		tasks.GET("", handlers.ListTasks(s.engine))
		tasks.GET("/:id", handlers.GetTask(s.engine))
		tasks.POST("/:id/cancel", handlers.CancelTask(s.engine))
		tasks.GET("/:id/failures", handlers.DownloadFailures(s.engine.Exporter()))
	}

	// Product link resolution
	v1.GET("/variants", handlers.LookupVariant(s.resolver))
}
