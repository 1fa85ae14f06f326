package dto

import (
	"strings"
	"time"

	"agent-console/internal/application/analytics"
	"agent-console/internal/domain/entity"
)

// UpsertSettingsRequest 业务参数写入请求，数值字段接受数字或字符串
type UpsertSettingsRequest struct {
	Scope                      string        `json:"scope" binding:"required"`
	ScopeKey                   string        `json:"scope_key"`
	RevenuePerInteraction      LenientNumber `json:"revenue_per_interaction"`
	ConversionRate             LenientNumber `json:"conversion_rate"`
	MinutesSavedPerInteraction LenientNumber `json:"minutes_saved_per_interaction"`
	HourlyCost                 LenientNumber `json:"hourly_cost"`
}

// ScopeValue 规范化后的作用域
func (r *UpsertSettingsRequest) ScopeValue() entity.SettingScope {
	return entity.SettingScope(strings.ToLower(strings.TrimSpace(r.Scope)))
}

// Params 转换为参数集
func (r *UpsertSettingsRequest) Params() analytics.ParameterSet {
	return analytics.ParameterSet{
		RevenuePerInteraction:      r.RevenuePerInteraction.Value,
		ConversionRate:             r.ConversionRate.Value,
		MinutesSavedPerInteraction: r.MinutesSavedPerInteraction.Value,
		HourlyCost:                 r.HourlyCost.Value,
	}
}

// EffectiveSettingsQuery 有效参数查询
type EffectiveSettingsQuery struct {
	AgentID  string `form:"agent_id"`
	Category string `form:"category"`
}

// EffectiveSettingsResponse 有效参数响应，Resolved 为缺省取 0 后的值
type EffectiveSettingsResponse struct {
	AgentID  string                 `json:"agent_id,omitempty"`
	Category string                 `json:"category,omitempty"`
	Params   analytics.ParameterSet `json:"params"`
	Resolved analytics.Parameters   `json:"resolved"`
}

// SettingResponse 参数行响应
type SettingResponse struct {
	ID                         string              `json:"id,omitempty"`
	Scope                      entity.SettingScope `json:"scope"`
	ScopeKey                   string              `json:"scope_key"`
	RevenuePerInteraction      *float64            `json:"revenue_per_interaction"`
	ConversionRate             *float64            `json:"conversion_rate"`
	MinutesSavedPerInteraction *float64            `json:"minutes_saved_per_interaction"`
	HourlyCost                 *float64            `json:"hourly_cost"`
	UpdatedBy                  string              `json:"updated_by,omitempty"`
	UpdatedAt                  time.Time           `json:"updated_at"`
}

// ToSettingResponse 实体转换为响应
func ToSettingResponse(s *entity.BusinessSetting) *SettingResponse {
	if s == nil {
		return nil
	}
	return &SettingResponse{
		ID:                         s.ID,
		Scope:                      s.Scope,
		ScopeKey:                   s.ScopeKey,
		RevenuePerInteraction:      s.RevenuePerInteraction,
		ConversionRate:             s.ConversionRate,
		MinutesSavedPerInteraction: s.MinutesSavedPerInteraction,
		HourlyCost:                 s.HourlyCost,
		UpdatedBy:                  s.UpdatedBy,
		UpdatedAt:                  s.UpdatedAt,
	}
}

// ToSettingListResponse 实体列表转换为响应
func ToSettingListResponse(rows []*entity.BusinessSetting) []*SettingResponse {
	items := make([]*SettingResponse, len(rows))
	for i, s := range rows {
		items[i] = ToSettingResponse(s)
	}
	return items
}
