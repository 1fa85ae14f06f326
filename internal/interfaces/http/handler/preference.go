package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"agent-console/internal/domain/repository"
	"agent-console/internal/interfaces/http/dto"
	"agent-console/internal/interfaces/http/middleware"
	apperrors "agent-console/pkg/errors"
)

// PreferenceHandler 用户偏好处理器，每个用户一个命名空间
type PreferenceHandler struct {
	store repository.PreferenceStore
}

// NewPreferenceHandler 创建偏好处理器
func NewPreferenceHandler(store repository.PreferenceStore) *PreferenceHandler {
	return &PreferenceHandler{store: store}
}

func userNamespace(userID string) string {
	return "user:" + userID
}

func (h *PreferenceHandler) key(c *gin.Context) (string, bool) {
	key := c.Param("key")
	if !dto.ValidPreferenceKey(key) {
		dto.AppError(c, apperrors.ErrInvalidParam.WithDetail("invalid preference key"))
		return "", false
	}
	return key, true
}

// Get 读取偏好
// @Summary 读取偏好
// @Tags Preferences
// @Produce json
// @Param key path string true "偏好键"
// @Success 200 {object} dto.Response[dto.PreferenceResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/preferences/{key} [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}

	var value json.RawMessage
	found, err := h.store.Get(c.Request.Context(), userNamespace(middleware.GetUserIDFromGin(c)), key, &value)
	if err != nil {
		respondError(c, "failed to read preference", apperrors.Wrap(err, apperrors.CodeStorageError, "failed to read preference"))
		return
	}
	if !found {
		dto.AppError(c, apperrors.ErrNotFound.WithDetail("preference not set"))
		return
	}
	dto.Success(c, &dto.PreferenceResponse{Key: key, Value: value})
}

// Put 写入偏好，最后写入者胜出
// @Summary 写入偏好
// @Tags Preferences
// @Accept json
// @Produce json
// @Param key path string true "偏好键"
// @Param body body dto.PutPreferenceRequest true "偏好值"
// @Success 200 {object} dto.Response[dto.PreferenceResponse]
// @Router /api/v1/preferences/{key} [put]
func (h *PreferenceHandler) Put(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}

	var req dto.PutPreferenceRequest
	if !bindJSON(c, &req) {
		return
	}
	if !json.Valid(req.Value) {
		dto.AppError(c, apperrors.ErrInvalidParam.WithDetail("value must be valid JSON"))
		return
	}

	if err := h.store.Put(c.Request.Context(), userNamespace(middleware.GetUserIDFromGin(c)), key, req.Value); err != nil {
		respondError(c, "failed to save preference", apperrors.Wrap(err, apperrors.CodeStorageError, "failed to save preference"))
		return
	}
	dto.Success(c, &dto.PreferenceResponse{Key: key, Value: req.Value})
}

// Delete 删除偏好，不存在时同样成功
// @Summary 删除偏好
// @Tags Preferences
// @Param key path string true "偏好键"
// @Success 204
// @Router /api/v1/preferences/{key} [delete]
func (h *PreferenceHandler) Delete(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), userNamespace(middleware.GetUserIDFromGin(c)), key); err != nil {
		respondError(c, "failed to delete preference", apperrors.Wrap(err, apperrors.CodeStorageError, "failed to delete preference"))
		return
	}
	dto.NoContent(c)
}
