// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agent-console/internal/domain/repository"
	apperrors "agent-console/pkg/errors"
	"agent-console/pkg/logger"
)

type rollbackOnlyError struct {
	status int
}

func (e rollbackOnlyError) Error() string {
	return fmt.Sprintf("rollback only: status=%d", e.status)
}

// DBTransaction 为每个 HTTP 请求开启数据库事务，并在事务内设置组织上下文（RLS）。
//
// 状态码 >= 400 或存在 Gin 错误时回滚，否则提交。
// set_config(..., is_local=TRUE) 仅在事务内有效，因此组织上下文必须绑定在事务中。
func DBTransaction(tx repository.Transactor, orgCtx repository.OrgContextManager) gin.HandlerFunc {
	if tx == nil || orgCtx == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// 导出与供应商连通性测试耗时较长，在 Handler 内按需使用短事务
		path := c.Request.URL.Path
		if strings.Contains(path, "/export/") || strings.HasSuffix(path, "/test") {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		orgID := GetOrgID(ctx)

		err := tx.WithTransaction(ctx, func(txCtx context.Context) error {
			if orgID != "" {
				if err := orgCtx.SetOrg(txCtx, orgID); err != nil {
					return err
				}
			}

			c.Request = c.Request.WithContext(txCtx)
			c.Next()

			status := c.Writer.Status()
			if status >= http.StatusBadRequest || len(c.Errors) > 0 {
				return rollbackOnlyError{status: status}
			}
			return nil
		})
		if err == nil {
			return
		}

		// 业务主动回滚时响应已写出
		var rbErr rollbackOnlyError
		if errors.As(err, &rbErr) {
			return
		}

		logger.Error(ctx, "db transaction failed", err)
		if !c.Writer.Written() && c.Writer.Status() < http.StatusBadRequest {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":     apperrors.CodeDatabaseError,
				"message":  "internal server error",
				"trace_id": c.GetString("trace_id"),
			})
		}
	}
}
