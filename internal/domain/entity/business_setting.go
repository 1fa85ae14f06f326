package entity

import "time"

// SettingScope 业务参数作用域
type SettingScope string

const (
	SettingScopeOrg      SettingScope = "org"
	SettingScopeCategory SettingScope = "category"
	SettingScopeAgent    SettingScope = "agent"
)

// Valid 作用域是否合法
func (s SettingScope) Valid() bool {
	switch s {
	case SettingScopeOrg, SettingScopeCategory, SettingScopeAgent:
		return true
	}
	return false
}

// BusinessSetting 某一作用域下的业务参数行，四个字段均可为空。
// (org_id, scope, scope_key) 唯一；组织级行的 scope_key 为空串。
type BusinessSetting struct {
	ID                         string       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrgID                      string       `json:"org_id" gorm:"type:uuid;not null;uniqueIndex:uk_business_settings_scope,priority:1"`
	Scope                      SettingScope `json:"scope" gorm:"type:varchar(16);not null;uniqueIndex:uk_business_settings_scope,priority:2"`
	ScopeKey                   string       `json:"scope_key" gorm:"type:varchar(128);not null;default:'';uniqueIndex:uk_business_settings_scope,priority:3"`
	RevenuePerInteraction      *float64     `json:"revenue_per_interaction"`
	ConversionRate             *float64     `json:"conversion_rate"`
	MinutesSavedPerInteraction *float64     `json:"minutes_saved_per_interaction"`
	HourlyCost                 *float64     `json:"hourly_cost"`
	UpdatedBy                  string       `json:"updated_by,omitempty" gorm:"type:varchar(64)"`
	CreatedAt                  time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt                  time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 表名
func (BusinessSetting) TableName() string {
	return "business_settings"
}

// IsEmpty 四个字段是否全部为空
func (s *BusinessSetting) IsEmpty() bool {
	return s.RevenuePerInteraction == nil && s.ConversionRate == nil &&
		s.MinutesSavedPerInteraction == nil && s.HourlyCost == nil
}
