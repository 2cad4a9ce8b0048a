package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gemgem/backend/config"
)

// SetupRouter configures the gin router with all routes and middleware
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	if cfg.RateLimit.PerIP > 0 {
		limiter := NewRateLimiter(cfg.RateLimit.PerIP)
		router.Use(limiter.Middleware())
	}

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/compare/:listingId", handler.Compare)
		v1.GET("/listings/:listingId/estimate", handler.Estimate)
		v1.GET("/listings/:listingId/similar", handler.Similar)
		v1.POST("/corpus/refresh", handler.RefreshCorpus)
	}

	return router
}
