package http

import (
	"github.com/MadeByDW91/gokartpartpicker.com/config"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(logger.RequestLogger())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		parts := v1.Group("/parts")
		{
			parts.POST("/process", handler.ProcessPart)
			parts.POST("/ingest", handler.IngestBatch)
		}

		batches := v1.Group("/batches")
		{
			batches.GET("/:id", handler.GetBatch)
			batches.GET("/:id/analysis", handler.GetBatchAnalysis)
		}

		v1.POST("/brands/resolve", handler.ResolveBrand)
		v1.POST("/names/normalize", handler.NormalizeName)
		v1.POST("/categories/resolve", handler.ResolveCategory)
		v1.POST("/specs/extract", handler.ExtractSpecs)
		v1.POST("/specs/validate", handler.ValidateSpecs)
		v1.GET("/units/convert", handler.ConvertUnits)
	}

	return router
}
