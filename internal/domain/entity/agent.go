package entity

import "time"

// Agent 智能体配置
type Agent struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgID        string    `json:"org_id" gorm:"type:uuid;index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(128);not null"`
	Category     string    `json:"category" gorm:"type:varchar(64);index"`
	Provider     string    `json:"provider" gorm:"type:varchar(32);not null"`
	Model        string    `json:"model" gorm:"type:varchar(64);not null"`
	SystemPrompt string    `json:"system_prompt" gorm:"type:text"`
	Temperature  float64   `json:"temperature" gorm:"not null;default:0.7"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 表名
func (Agent) TableName() string {
	return "agents"
}

// NewAgent 创建智能体
func NewAgent(orgID, name, category, provider, model string) *Agent {
	now := time.Now()
	return &Agent{
		OrgID:       orgID,
		Name:        name,
		Category:    category,
		Provider:    provider,
		Model:       model,
		Temperature: 0.7,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
