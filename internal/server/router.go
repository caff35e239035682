package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/rowiverse/assessment-backend/internal/http/handlers"
)

type RouterConfig struct {
	ServiceName string
	Tracing     bool

	ImportHandler    *handlers.ImportHandler
	InsightsHandler  *handlers.InsightsHandler
	BenchmarkHandler *handlers.BenchmarkHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.Tracing {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/import", cfg.ImportHandler.RunImport)
		api.GET("/insights/comparison", cfg.InsightsHandler.Comparison)
		api.GET("/insights/benchmarks", cfg.BenchmarkHandler.List)
		api.POST("/insights/benchmarks/:communityId/recompute", cfg.BenchmarkHandler.Recompute)
	}

	return router
}
