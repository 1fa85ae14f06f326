// Package entity 定义领域实体
package entity

import (
	"time"
)

// OrganizationStatus 组织状态
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
	OrganizationStatusDeleted   OrganizationStatus = "deleted"
)

// Organization 组织实体（多租户隔离单位）
type Organization struct {
	ID     string             `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string             `json:"name" gorm:"type:varchar(128);not null"`
	Slug   string             `json:"slug" gorm:"type:varchar(64);uniqueIndex;not null"`
	Status OrganizationStatus `json:"status" gorm:"type:varchar(16);not null;default:active"`
	// SettingsSeededAt 组织级业务参数引导写入时间，非空表示已引导过
	SettingsSeededAt *time.Time `json:"settings_seeded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 表名
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization 创建新组织
func NewOrganization(name, slug string) *Organization {
	now := time.Now()
	return &Organization{
		Name:      name,
		Slug:      slug,
		Status:    OrganizationStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive 检查组织是否活跃
func (o *Organization) IsActive() bool {
	return o.Status == OrganizationStatusActive
}

// SettingsSeeded 是否已执行过业务参数引导
func (o *Organization) SettingsSeeded() bool {
	return o.SettingsSeededAt != nil
}
