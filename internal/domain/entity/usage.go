package entity

import "time"

// UsageRecord 单次 LLM 调用的用量记录，由服务链路写入，看板只读
type UsageRecord struct {
	ID               string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgID            string    `json:"org_id" gorm:"type:uuid;index:idx_usage_org_created,priority:1;not null"`
	AgentID          string    `json:"agent_id" gorm:"type:uuid;index"`
	Provider         string    `json:"provider" gorm:"type:varchar(32);not null"`
	Model            string    `json:"model" gorm:"type:varchar(64);not null"`
	PromptTokens     int64     `json:"prompt_tokens" gorm:"not null;default:0"`
	CompletionTokens int64     `json:"completion_tokens" gorm:"not null;default:0"`
	TotalTokens      int64     `json:"total_tokens" gorm:"not null;default:0"`
	CostUSD          float64   `json:"cost_usd" gorm:"column:cost_usd;type:numeric(14,6);not null;default:0"`
	CostEstimated    bool      `json:"cost_estimated" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at" gorm:"index:idx_usage_org_created,priority:2;autoCreateTime"`
}

// TableName 表名
func (UsageRecord) TableName() string {
	return "usage_logs"
}

// ResponseTiming 单次响应耗时，DurationMs 为空表示未采集
type ResponseTiming struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgID      string    `json:"org_id" gorm:"type:uuid;index:idx_timing_org_created,priority:1;not null"`
	AgentID    string    `json:"agent_id" gorm:"type:uuid;index"`
	Provider   string    `json:"provider" gorm:"type:varchar(32)"`
	Model      string    `json:"model" gorm:"type:varchar(64)"`
	DurationMs *float64  `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" gorm:"index:idx_timing_org_created,priority:2;autoCreateTime"`
}

// TableName 表名
func (ResponseTiming) TableName() string {
	return "response_timings"
}

// ConversationOutcome 一次会话结束时的解决状态
type ConversationOutcome struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgID     string    `json:"org_id" gorm:"type:uuid;index:idx_outcome_org_created,priority:1;not null"`
	AgentID   string    `json:"agent_id" gorm:"type:uuid;index"`
	Resolved  bool      `json:"resolved" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_outcome_org_created,priority:2;autoCreateTime"`
}

// TableName 表名
func (ConversationOutcome) TableName() string {
	return "conversation_outcomes"
}
