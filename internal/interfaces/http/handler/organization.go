package handler

import (
	"github.com/gin-gonic/gin"

	"agent-console/internal/domain/repository"
	"agent-console/internal/interfaces/http/dto"
	"agent-console/internal/interfaces/http/middleware"
	apperrors "agent-console/pkg/errors"
)

// OrganizationHandler 组织处理器
type OrganizationHandler struct {
	orgRepo repository.OrganizationRepository
}

// NewOrganizationHandler 创建组织处理器
func NewOrganizationHandler(orgRepo repository.OrganizationRepository) *OrganizationHandler {
	return &OrganizationHandler{orgRepo: orgRepo}
}

// GetCurrent 获取当前组织
// @Summary 获取当前组织
// @Tags Organizations
// @Produce json
// @Success 200 {object} dto.Response[dto.OrganizationResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/organizations/current [get]
func (h *OrganizationHandler) GetCurrent(c *gin.Context) {
	ctx := c.Request.Context()
	org, err := h.orgRepo.GetByID(ctx, middleware.GetOrgIDFromGin(c))
	if err != nil {
		respondError(c, "failed to get organization", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get organization"))
		return
	}
	if org == nil {
		dto.AppError(c, apperrors.ErrOrganizationNotFound)
		return
	}
	dto.Success(c, dto.ToOrganizationResponse(org))
}

// UpdateCurrent 更新当前组织
// @Summary 更新当前组织
// @Tags Organizations
// @Accept json
// @Produce json
// @Param body body dto.UpdateOrganizationRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.OrganizationResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/organizations/current [put]
func (h *OrganizationHandler) UpdateCurrent(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.orgRepo.GetByID(ctx, middleware.GetOrgIDFromGin(c))
	if err != nil {
		respondError(c, "failed to get organization", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get organization"))
		return
	}
	if org == nil {
		dto.AppError(c, apperrors.ErrOrganizationNotFound)
		return
	}

	req.ApplyToOrganization(org)
	if err := h.orgRepo.Update(ctx, org); err != nil {
		respondError(c, "failed to update organization", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update organization"))
		return
	}
	dto.Success(c, dto.ToOrganizationResponse(org))
}
