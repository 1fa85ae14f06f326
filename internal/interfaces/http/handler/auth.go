// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"
	"time"

	"agent-console/internal/application/account"
	"agent-console/internal/config"
	"agent-console/internal/domain/entity"
	"agent-console/internal/interfaces/http/dto"
	apperrors "agent-console/pkg/errors"
	"agent-console/pkg/utils"

	"github.com/gin-gonic/gin"
)

const refreshCookie = "refresh_token"
const refreshCookiePath = "/api/v1/auth"

// AuthHandler 认证处理器
type AuthHandler struct {
	jwtManager *utils.JWTManager
	accounts   *account.Service
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg config.JWTConfig, accounts *account.Service) *AuthHandler {
	accessTTL := cfg.Expiration
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshExpiration
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &AuthHandler{
		jwtManager: utils.NewJWTManager(cfg.Secret, cfg.Issuer),
		accounts:   accounts,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// issue 签发双 Token 并写入 refresh cookie
func (h *AuthHandler) issue(c *gin.Context, user *entity.User) (*dto.AuthResponse, error) {
	tokens, err := h.jwtManager.GenerateTokenPair(user.OrgID, user.ID, string(user.Role), h.accessTTL, h.refreshTTL)
	if err != nil {
		return nil, err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, tokens.RefreshToken, int(h.refreshTTL.Seconds()), refreshCookiePath, "", false, true)
	return &dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int(h.accessTTL.Seconds()),
		User:         dto.ToAuthUserDTO(user),
	}, nil
}

// Register 注册
// @Summary 注册组织与管理员
// @Description 创建新组织，注册者成为该组织管理员
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.AuthResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		OrgName:  req.OrgName,
	})
	if err != nil {
		respondError(c, "registration failed", err)
		return
	}

	resp, err := h.issue(c, user)
	if err != nil {
		respondError(c, "failed to generate tokens", err)
		return
	}
	dto.Created(c, resp)
}

// Login 登录
// @Summary 用户登录
// @Description 验证邮箱密码并返回双 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "login failed", err)
		return
	}

	resp, err := h.issue(c, user)
	if err != nil {
		respondError(c, "failed to generate tokens", err)
		return
	}
	dto.Success(c, resp)
}

// RefreshToken 使用 RefreshToken 换取新的 AccessToken
// @Summary 刷新 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookie)
	if err != nil || refreshToken == "" {
		var req dto.RefreshRequest
		_ = c.ShouldBindJSON(&req)
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		dto.AppError(c, apperrors.ErrTokenMissing)
		return
	}

	claims, err := h.jwtManager.ParseToken(refreshToken)
	if err != nil || claims.Type != utils.TokenTypeRefresh {
		dto.AppError(c, apperrors.ErrTokenInvalid)
		return
	}

	accessToken, err := h.jwtManager.GenerateToken(claims.OrgID, claims.UserID, claims.Role, utils.TokenTypeAccess, h.accessTTL)
	if err != nil {
		respondError(c, "failed to generate access token", err)
		return
	}

	dto.Success(c, &dto.AuthResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(h.accessTTL.Seconds()),
	})
}

// Logout 登出，清除 refresh cookie
// @Summary 登出
// @Tags Auth
// @Success 204
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, refreshCookiePath, "", false, true)
	dto.NoContent(c)
}
