package repository

import (
	"context"

	"agent-console/internal/domain/entity"
)

// SettingRepository 业务参数仓储接口
type SettingRepository interface {
	// ListCandidates 返回参与解析的候选行：组织级、指定类别、指定智能体（各至多一行）
	ListCandidates(ctx context.Context, orgID, agentID, category string) ([]*entity.BusinessSetting, error)

	// List 返回组织下全部参数行
	List(ctx context.Context, orgID string) ([]*entity.BusinessSetting, error)

	// Upsert 按 (org_id, scope, scope_key) 幂等写入
	Upsert(ctx context.Context, setting *entity.BusinessSetting) error

	// CountByOrg 统计组织下任意作用域的参数行数
	CountByOrg(ctx context.Context, orgID string) (int64, error)
}
