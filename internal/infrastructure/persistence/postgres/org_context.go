// Package postgres 提供 PostgreSQL 数据库访问层实现
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// OrgContext 组织上下文管理，配合行级安全策略使用
type OrgContext struct {
	client *Client
}

// NewOrgContext 创建组织上下文管理器
func NewOrgContext(client *Client) *OrgContext {
	return &OrgContext{client: client}
}

// SetOrg 设置当前事务的组织上下文
func (oc *OrgContext) SetOrg(ctx context.Context, orgID string) error {
	db := getDB(ctx, oc.client.db)
	if err := db.Exec("SELECT set_config('app.current_org_id', ?, TRUE)", orgID).Error; err != nil {
		return fmt.Errorf("failed to set org context: %w", err)
	}
	return nil
}

// CurrentOrg 获取当前组织 ID
func (oc *OrgContext) CurrentOrg(ctx context.Context) (string, error) {
	db := getDB(ctx, oc.client.db)
	var orgID sql.NullString
	if err := db.Raw("SELECT current_setting('app.current_org_id', TRUE)").Scan(&orgID).Error; err != nil {
		return "", fmt.Errorf("failed to get org context: %w", err)
	}
	return orgID.String, nil
}

// ClearOrg 清除组织上下文
func (oc *OrgContext) ClearOrg(ctx context.Context) error {
	db := getDB(ctx, oc.client.db)
	if err := db.Exec("SELECT set_config('app.current_org_id', '', TRUE)").Error; err != nil {
		return fmt.Errorf("failed to clear org context: %w", err)
	}
	return nil
}
