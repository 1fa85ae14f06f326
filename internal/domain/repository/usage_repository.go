package repository

import (
	"context"
	"time"

	"agent-console/internal/domain/entity"
)

// UsageQuery 服务端过滤条件：组织、闭区间时间范围、可选智能体
type UsageQuery struct {
	OrgID   string
	From    time.Time
	To      *time.Time
	AgentID string
	// Limit 单次最多返回行数，<=0 表示不限制。超出时保留时间最新的行
	Limit int
}

// CostUpdate 单行成本回填
type CostUpdate struct {
	ID        string
	CostUSD   float64
	Estimated bool
}

// UsageRepository 用量记录仓储接口
type UsageRepository interface {
	// Create 写入一条用量记录
	Create(ctx context.Context, record *entity.UsageRecord) error
	// List 按时间升序返回满足条件的用量记录
	List(ctx context.Context, q UsageQuery) ([]*entity.UsageRecord, error)

	// ListForRecalc 按 ID 游标分批返回待重算成本的记录，provider 不区分大小写，为空表示全部
	ListForRecalc(ctx context.Context, orgID, provider, afterID string, limit int) ([]*entity.UsageRecord, error)

	// UpdateCosts 批量回填成本
	UpdateCosts(ctx context.Context, updates []CostUpdate) error
}

// TimingRepository 响应耗时仓储接口
type TimingRepository interface {
	Create(ctx context.Context, timing *entity.ResponseTiming) error
	// List 仅返回 duration_ms 非空的记录
	List(ctx context.Context, q UsageQuery) ([]*entity.ResponseTiming, error)
}

// OutcomeRepository 会话结果仓储接口
type OutcomeRepository interface {
	List(ctx context.Context, q UsageQuery) ([]*entity.ConversationOutcome, error)
}
