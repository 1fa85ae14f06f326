package dto

import (
	"strings"
	"time"

	"agent-console/internal/domain/entity"
)

// CreateAgentRequest 创建智能体请求
type CreateAgentRequest struct {
	Name         string   `json:"name" binding:"required,max=128"`
	Category     string   `json:"category" binding:"max=64"`
	Provider     string   `json:"provider" binding:"required,max=32"`
	Model        string   `json:"model" binding:"required,max=64"`
	SystemPrompt string   `json:"system_prompt"`
	Temperature  *float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
	Active       *bool    `json:"active"`
}

// UpdateAgentRequest 更新智能体请求
type UpdateAgentRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=128"`
	Category     *string  `json:"category" binding:"omitempty,max=64"`
	Provider     *string  `json:"provider" binding:"omitempty,max=32"`
	Model        *string  `json:"model" binding:"omitempty,max=64"`
	SystemPrompt *string  `json:"system_prompt"`
	Temperature  *float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
	Active       *bool    `json:"active"`
}

// AgentListQuery 智能体列表过滤
type AgentListQuery struct {
	Category string `form:"category"`
	Provider string `form:"provider"`
	Active   string `form:"active"`
}

// AgentResponse 智能体响应
type AgentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	Temperature  float64   `json:"temperature"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToEntity 构建智能体实体
func (r *CreateAgentRequest) ToEntity(orgID string) *entity.Agent {
	a := entity.NewAgent(orgID, r.Name, strings.TrimSpace(r.Category), strings.ToLower(r.Provider), r.Model)
	a.SystemPrompt = r.SystemPrompt
	if r.Temperature != nil {
		a.Temperature = *r.Temperature
	}
	if r.Active != nil {
		a.Active = *r.Active
	}
	return a
}

// ApplyToAgent 更新实体
func (r *UpdateAgentRequest) ApplyToAgent(a *entity.Agent) {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Category != nil {
		a.Category = strings.TrimSpace(*r.Category)
	}
	if r.Provider != nil {
		a.Provider = strings.ToLower(*r.Provider)
	}
	if r.Model != nil {
		a.Model = *r.Model
	}
	if r.SystemPrompt != nil {
		a.SystemPrompt = *r.SystemPrompt
	}
	if r.Temperature != nil {
		a.Temperature = *r.Temperature
	}
	if r.Active != nil {
		a.Active = *r.Active
	}
	a.UpdatedAt = time.Now()
}

// ToAgentResponse 实体转换为响应
func ToAgentResponse(a *entity.Agent) *AgentResponse {
	if a == nil {
		return nil
	}
	return &AgentResponse{
		ID:           a.ID,
		Name:         a.Name,
		Category:     a.Category,
		Provider:     a.Provider,
		Model:        a.Model,
		SystemPrompt: a.SystemPrompt,
		Temperature:  a.Temperature,
		Active:       a.Active,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToAgentListResponse 实体列表转换为响应
func ToAgentListResponse(agents []*entity.Agent) []*AgentResponse {
	items := make([]*AgentResponse, len(agents))
	for i, a := range agents {
		items[i] = ToAgentResponse(a)
	}
	return items
}
