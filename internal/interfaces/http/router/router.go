// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agent-console/internal/config"
	"agent-console/internal/domain/repository"
	"agent-console/internal/interfaces/http/handler"
	"agent-console/internal/interfaces/http/middleware"
)

// RouterHandlers 路由使用的全部处理器
type RouterHandlers struct {
	Auth         *handler.AuthHandler
	Health       *handler.HealthHandler
	Organization *handler.OrganizationHandler
	User         *handler.UserHandler
	Agent        *handler.AgentHandler
	Dashboard    *handler.DashboardHandler
	Settings     *handler.SettingsHandler
	Billing      *handler.BillingHandler
	Provider     *handler.ProviderHandler
	Preference   *handler.PreferenceHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers *RouterHandlers

	authCfg      middleware.AuthConfig
	tx           repository.Transactor
	orgCtx       repository.OrgContextManager
	limiter      middleware.RateLimiter
	rateLimitKey middleware.KeyFunc
}

// NewWithDeps 创建路由器并注册全部路由
func NewWithDeps(
	cfg *config.Config,
	handlers *RouterHandlers,
	authCfg middleware.AuthConfig,
	tx repository.Transactor,
	orgCtx repository.OrgContextManager,
	limiter middleware.RateLimiter,
	rateLimitKey middleware.KeyFunc,
) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:       gin.New(),
		cfg:          cfg,
		handlers:     handlers,
		authCfg:      authCfg,
		tx:           tx,
		orgCtx:       orgCtx,
		limiter:      limiter,
		rateLimitKey: rateLimitKey,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置全局中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.metricsPath(), "/health", "/health/ready", "/health/live"))
	}
}

func (r *Router) metricsPath() string {
	if r.cfg.Observability.Metrics.Path == "" {
		return "/metrics"
	}
	return r.cfg.Observability.Metrics.Path
}

// setupRoutes 配置系统端点与 v1 路由
func (r *Router) setupRoutes() {
	h := r.handlers

	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/health/ready", h.Health.Ready)
	r.engine.GET("/health/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/api/v1")
	RegisterAuthRoutes(v1, h.Auth)

	protected := v1.Group("",
		middleware.Auth(r.authCfg),
		middleware.Org(middleware.OrgConfig{}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:           r.cfg.Security.RateLimit.Enabled,
			RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
			Burst:             r.cfg.Security.RateLimit.Burst,
		}, r.limiter, r.rateLimitKey),
		middleware.DBTransaction(r.tx, r.orgCtx),
		middleware.Audit(middleware.AuditConfig{Enabled: true, SkipPaths: middleware.DefaultAuditSkipPaths}),
	)
	RegisterV1Routes(protected, h)
}
