// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"

	"agent-console/pkg/logger"

	"github.com/gin-gonic/gin"
)

// OrgContextKey 组织上下文 Key 类型
type OrgContextKey string

const (
	// OrgIDKey 组织 ID 上下文 Key
	OrgIDKey OrgContextKey = "org_id"
	// UserIDKey 用户 ID 上下文 Key
	UserIDKey OrgContextKey = "user_id"
)

// gin.Context 中的键
const (
	ginOrgIDKey  = "org_id"
	ginUserIDKey = "user_id"
	ginRoleKey   = "role"
)

// OrgConfig 组织中间件配置
type OrgConfig struct {
	// HeaderName 未认证场景下从 Header 读取组织 ID（仅开发环境）
	HeaderName string
	// AllowHeader 是否允许从 Header 读取
	AllowHeader bool
}

// Org 组织上下文中间件，把 JWT 中的组织/用户写入 request context 供仓储层和日志使用
func Org(cfg OrgConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Org-ID"
	}

	return func(c *gin.Context) {
		orgID := c.GetString(ginOrgIDKey)
		if orgID == "" && cfg.AllowHeader {
			orgID = c.GetHeader(cfg.HeaderName)
			if orgID != "" {
				c.Set(ginOrgIDKey, orgID)
			}
		}

		ctx := c.Request.Context()
		if orgID != "" {
			ctx = context.WithValue(ctx, OrgIDKey, orgID)
			ctx = logger.WithContext(ctx, logger.OrgIDKey, orgID)
		}
		if userID := c.GetString(ginUserIDKey); userID != "" {
			ctx = context.WithValue(ctx, UserIDKey, userID)
			ctx = logger.WithContext(ctx, logger.UserIDKey, userID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetOrgID 从 context 中获取组织 ID
func GetOrgID(ctx context.Context) string {
	if s, ok := ctx.Value(OrgIDKey).(string); ok {
		return s
	}
	return ""
}

// GetUserID 从 context 中获取用户 ID
func GetUserID(ctx context.Context) string {
	if s, ok := ctx.Value(UserIDKey).(string); ok {
		return s
	}
	return ""
}

// GetOrgIDFromGin 从 Gin Context 中获取组织 ID
func GetOrgIDFromGin(c *gin.Context) string {
	return c.GetString(ginOrgIDKey)
}

// GetUserIDFromGin 从 Gin Context 中获取用户 ID
func GetUserIDFromGin(c *gin.Context) string {
	return c.GetString(ginUserIDKey)
}

// GetRoleFromGin 从 Gin Context 中获取角色
func GetRoleFromGin(c *gin.Context) string {
	return c.GetString(ginRoleKey)
}
