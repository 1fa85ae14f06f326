package router

import (
	"github.com/gin-gonic/gin"

	"agent-console/internal/interfaces/http/handler"
	"agent-console/internal/interfaces/http/middleware"
)

// RegisterAuthRoutes 注册无需令牌的认证路由
func RegisterAuthRoutes(v1 *gin.RouterGroup, authHandler *handler.AuthHandler) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/logout", authHandler.Logout)
	}
}

// RegisterV1Routes 注册需要认证的 v1 路由
func RegisterV1Routes(v1 *gin.RouterGroup, h *RouterHandlers) {
	read := middleware.RequirePermission(middleware.PermDashboardRead)

	// 用量明细
	usage := v1.Group("/usage", read)
	{
		usage.GET("", h.Dashboard.Usage)
		usage.GET("/timings", h.Dashboard.Timings)
		usage.GET("/outcomes", h.Dashboard.Outcomes)
	}

	// 执行看板
	dashboard := v1.Group("/dashboard", read)
	{
		dashboard.GET("/summary", h.Dashboard.Summary)
		dashboard.GET("/agents", h.Dashboard.Agents)
		dashboard.GET("/categories", h.Dashboard.Categories)
		dashboard.GET("/monthly", h.Dashboard.Monthly)
	}

	v1.GET("/export/:metric", read, h.Dashboard.Export)

	// 业务参数
	settings := v1.Group("/settings")
	{
		settings.GET("", read, h.Settings.List)
		settings.GET("/effective", read, h.Settings.Effective)
		settings.PUT("", middleware.RequirePermission(middleware.PermSettingsWrite), h.Settings.Upsert)
		settings.POST("/bootstrap", middleware.RequirePermission(middleware.PermSettingsBootstrap), h.Settings.Bootstrap)
	}

	// 计费
	v1.POST("/billing/recalculate", middleware.RequirePermission(middleware.PermBillingRecalc), h.Billing.Recalculate)

	// 智能体
	agentsWrite := middleware.RequirePermission(middleware.PermAgentsWrite)
	agents := v1.Group("/agents")
	{
		agents.GET("", h.Agent.List)
		agents.POST("", agentsWrite, h.Agent.Create)
		agents.GET("/:aid", h.Agent.Get)
		agents.PUT("/:aid", agentsWrite, h.Agent.Update)
		agents.DELETE("/:aid", agentsWrite, h.Agent.Delete)
	}

	// 模型供应商
	providers := v1.Group("/providers")
	{
		providers.GET("", h.Provider.List)
		providers.GET("/:name/models", h.Provider.Models)
		providers.POST("/:name/test", middleware.RequirePermission(middleware.PermProvidersTest), h.Provider.Test)
	}

	// 组织
	orgs := v1.Group("/organizations")
	{
		orgs.GET("/current", h.Organization.GetCurrent)
		orgs.PUT("/current", middleware.RequirePermission(middleware.PermAdminAccess), h.Organization.UpdateCurrent)
	}

	// 用户
	usersWrite := middleware.RequirePermission(middleware.PermUsersWrite)
	users := v1.Group("/users")
	{
		users.GET("/me", h.User.GetMe)
		users.GET("", h.User.List)
		users.POST("", usersWrite, h.User.Create)
		users.GET("/:uid", h.User.Get)
		users.PUT("/:uid", usersWrite, h.User.Update)
		users.DELETE("/:uid", usersWrite, h.User.Delete)
	}

	// 用户偏好
	prefs := v1.Group("/preferences")
	{
		prefs.GET("/:key", h.Preference.Get)
		prefs.PUT("/:key", h.Preference.Put)
		prefs.DELETE("/:key", h.Preference.Delete)
	}
}
