// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"github.com/gin-gonic/gin"

	"agent-console/internal/domain/repository"
)

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize 规范化分页参数
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// Pagination 转换为仓储分页参数
func (r PageRequest) Pagination() repository.Pagination {
	return repository.NewPagination(r.Page, r.PageSize)
}

// BindPage 从 Gin Context 绑定分页参数，非法值回退到默认值
func BindPage(c *gin.Context) PageRequest {
	req := PageRequest{
		Page:     LenientInt(c.Query("page")),
		PageSize: LenientInt(c.Query("page_size")),
	}
	req.Normalize()
	return req
}

// BindAgentID 从 URI 绑定智能体 ID
func BindAgentID(c *gin.Context) string {
	return c.Param("aid")
}

// BindUserID 从 URI 绑定用户 ID
func BindUserID(c *gin.Context) string {
	return c.Param("uid")
}

// BindProviderName 从 URI 绑定供应商名称
func BindProviderName(c *gin.Context) string {
	return c.Param("name")
}
