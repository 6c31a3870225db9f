package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/massaflow/practice-api/internal/handler"
	"github.com/massaflow/practice-api/internal/middleware"
	"github.com/massaflow/practice-api/pkg/metrics"
)

// Handler is anything that mounts routes under the versioned API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	Mode      string
}

type Router struct {
	engine   *gin.Engine
	base     *handler.Handler
	handlers []Handler
}

func New(cfg Config, m *metrics.Metrics, base *handler.Handler, handlers ...Handler) *Router {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(m),
	)
	if cfg.RateLimit > 0 {
		engine.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
	}

	return &Router{engine: engine, base: base, handlers: handlers}
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.base.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
