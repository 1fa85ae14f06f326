package dto

import (
	"time"

	"agent-console/internal/domain/entity"
)

// OrganizationResponse 组织响应
type OrganizationResponse struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	Slug             string                    `json:"slug"`
	Status           entity.OrganizationStatus `json:"status"`
	SettingsSeededAt *time.Time                `json:"settings_seeded_at,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// UpdateOrganizationRequest 更新组织请求
type UpdateOrganizationRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=128"`
}

// ToOrganizationResponse 实体转换为响应
func ToOrganizationResponse(o *entity.Organization) *OrganizationResponse {
	if o == nil {
		return nil
	}
	return &OrganizationResponse{
		ID:               o.ID,
		Name:             o.Name,
		Slug:             o.Slug,
		Status:           o.Status,
		SettingsSeededAt: o.SettingsSeededAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ApplyToOrganization 更新实体
func (r *UpdateOrganizationRequest) ApplyToOrganization(o *entity.Organization) {
	if r.Name != nil {
		o.Name = *r.Name
	}
	o.UpdatedAt = time.Now()
}
