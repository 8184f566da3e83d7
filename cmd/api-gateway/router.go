package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/weekcal-api/internal/handler"
	"github.com/noah-isme/weekcal-api/internal/middleware"
	"github.com/noah-isme/weekcal-api/internal/service"
	"github.com/noah-isme/weekcal-api/pkg/config"
	"github.com/noah-isme/weekcal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/weekcal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/weekcal-api/pkg/middleware/requestid"
)

type routerDeps struct {
	events     *handler.EventHandler
	views      *handler.ViewHandler
	exports    *handler.ExportHandler
	metrics    *handler.MetricsHandler
	metricsSvc *service.MetricsService
	tokens     middleware.TokenValidator
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metricsSvc, "/metrics", "/health"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.metrics.Health)
	r.GET("/metrics", deps.metrics.Prometheus)

	writes := []gin.HandlerFunc{}
	if deps.tokens != nil {
		writes = append(writes, middleware.JWT(deps.tokens))
	}

	events := r.Group("/api")
	{
		events.GET("/events", deps.events.List)
		events.GET("/events.ics", deps.exports.Feed)
		events.GET("/events/:id", deps.events.Get)

		guarded := events.Group("", writes...)
		guarded.POST("/events", deps.events.Create)
		guarded.POST("/events/form", deps.events.CreateFromForm)
		guarded.PUT("/events/:id", deps.events.Update)
		guarded.PATCH("/events/:id", deps.events.Update)
		guarded.DELETE("/events/:id", deps.events.Delete)
	}

	api := r.Group(cfg.APIPrefix)
	{
		views := api.Group("/views")
		views.GET("/week", deps.views.Week)
		views.GET("/week/next", deps.views.NextWeek)
		views.GET("/week/prev", deps.views.PrevWeek)
		views.GET("/day", deps.views.Day)
		views.GET("/slot", deps.views.Slot)
		views.GET("/month", deps.views.Month)
		views.GET("/upcoming", deps.views.Upcoming)

		api.GET("/exports/week", deps.exports.Week)
		api.GET("/metrics/summary", deps.metrics.Summary)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
