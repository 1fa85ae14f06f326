// Package settings 提供业务参数的读取、写入与组织引导
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"agent-console/internal/application/analytics"
	"agent-console/internal/config"
	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	apperrors "agent-console/pkg/errors"
	"agent-console/pkg/logger"
	"agent-console/pkg/metrics"
	"agent-console/pkg/tracer"
)

// Cache 读穿缓存
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, error)
	InvalidateOrgSettings(ctx context.Context, orgID string) error
}

// KeyFunc 缓存键生成
type KeyFunc func(orgID, agentID, category string) string

// Service 业务参数服务
type Service struct {
	repo     repository.SettingRepository
	orgRepo  repository.OrganizationRepository
	cache    Cache
	cacheKey KeyFunc
	ttl      time.Duration
	defaults config.BusinessParameters
	now      func() time.Time
}

// NewService 创建业务参数服务，cache 为 nil 时直接读库
func NewService(
	repo repository.SettingRepository,
	orgRepo repository.OrganizationRepository,
	cache Cache,
	cacheKey KeyFunc,
	ttl time.Duration,
	defaults config.BusinessParameters,
) *Service {
	return &Service{
		repo:     repo,
		orgRepo:  orgRepo,
		cache:    cache,
		cacheKey: cacheKey,
		ttl:      ttl,
		defaults: defaults,
		now:      time.Now,
	}
}

// Effective 返回 agent > category > org 逐字段解析后的参数
func (s *Service) Effective(ctx context.Context, orgID, agentID, category string) (analytics.ParameterSet, error) {
	ctx, span := tracer.Start(ctx, "settings.Effective")
	defer span.End()

	load := func(ctx context.Context) (any, error) {
		rows, err := s.repo.ListCandidates(ctx, orgID, agentID, category)
		if err != nil {
			return nil, err
		}
		return analytics.ResolveRows(rows, agentID, category), nil
	}

	if s.cache == nil || s.cacheKey == nil {
		v, err := load(ctx)
		if err != nil {
			tracer.Fail(span, err)
			return analytics.ParameterSet{}, err
		}
		return v.(analytics.ParameterSet), nil
	}

	data, err := s.cache.GetOrLoad(ctx, s.cacheKey(orgID, agentID, category), s.ttl, load)
	if err != nil {
		tracer.Fail(span, err)
		return analytics.ParameterSet{}, err
	}
	var out analytics.ParameterSet
	if err := json.Unmarshal(data, &out); err != nil {
		return analytics.ParameterSet{}, fmt.Errorf("failed to decode cached settings: %w", err)
	}
	return out, nil
}

// List 返回组织下全部参数行
func (s *Service) List(ctx context.Context, orgID string) ([]*entity.BusinessSetting, error) {
	return s.repo.List(ctx, orgID)
}

// UpsertInput 参数写入请求，数值字段已完成宽松解析
type UpsertInput struct {
	OrgID     string
	Scope     entity.SettingScope
	ScopeKey  string
	Params    analytics.ParameterSet
	UpdatedBy string
}

// Upsert 写入某作用域的参数并使组织缓存失效
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*entity.BusinessSetting, error) {
	ctx, span := tracer.Start(ctx, "settings.Upsert")
	defer span.End()

	if !in.Scope.Valid() {
		return nil, apperrors.ErrInvalidParam.WithDetail("scope must be org, category or agent")
	}
	key := strings.TrimSpace(in.ScopeKey)
	if in.Scope == entity.SettingScopeOrg {
		key = ""
	} else if key == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("scope_key is required for " + string(in.Scope) + " scope")
	}

	row := &entity.BusinessSetting{
		OrgID:                      in.OrgID,
		Scope:                      in.Scope,
		ScopeKey:                   key,
		RevenuePerInteraction:      in.Params.RevenuePerInteraction,
		ConversionRate:             in.Params.ConversionRate,
		MinutesSavedPerInteraction: in.Params.MinutesSavedPerInteraction,
		HourlyCost:                 in.Params.HourlyCost,
		UpdatedBy:                  in.UpdatedBy,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		tracer.Fail(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save settings")
	}
	s.invalidate(ctx, in.OrgID)
	return row, nil
}

func (s *Service) invalidate(ctx context.Context, orgID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOrgSettings(ctx, orgID); err != nil {
		logger.Warn(ctx, "failed to invalidate settings cache", "org_id", orgID, "error", err.Error())
	}
}

// BootstrapResult 引导结果
type BootstrapResult struct {
	Seeded bool   `json:"seeded"`
	Reason string `json:"reason,omitempty"`
}

// Bootstrap 为尚未配置参数的组织写入默认组织级参数。
// 仅管理员可调用；组织已有任意参数行或已引导过时跳过。
// 写入失败只记录日志，不向调用方报错。
func (s *Service) Bootstrap(ctx context.Context, orgID string, role entity.UserRole) BootstrapResult {
	ctx, span := tracer.Start(ctx, "settings.Bootstrap")
	defer span.End()

	if role != entity.UserRoleAdmin {
		metrics.SettingsSeedTotal.WithLabelValues("forbidden").Inc()
		return BootstrapResult{Reason: "admin role required"}
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil || org == nil {
		if err != nil {
			logger.Error(ctx, "failed to load organization for settings bootstrap", err, "org_id", orgID)
		}
		metrics.SettingsSeedTotal.WithLabelValues("error").Inc()
		return BootstrapResult{Reason: "organization unavailable"}
	}
	if org.SettingsSeeded() {
		metrics.SettingsSeedTotal.WithLabelValues("skipped").Inc()
		return BootstrapResult{Reason: "already seeded"}
	}

	count, err := s.repo.CountByOrg(ctx, orgID)
	if err != nil {
		logger.Error(ctx, "failed to count settings", err, "org_id", orgID)
		metrics.SettingsSeedTotal.WithLabelValues("error").Inc()
		return BootstrapResult{Reason: "settings unavailable"}
	}
	if count > 0 {
		// 已有手工配置，只补记标记
		if _, err := s.orgRepo.MarkSettingsSeeded(ctx, orgID, s.now()); err != nil {
			logger.Warn(ctx, "failed to mark settings seeded", "org_id", orgID, "error", err.Error())
		}
		metrics.SettingsSeedTotal.WithLabelValues("skipped").Inc()
		return BootstrapResult{Reason: "settings already configured"}
	}

	// 组织级行按 (org_id, scope, scope_key) 幂等写入，并发引导重复写入无副作用
	d := s.defaults
	row := &entity.BusinessSetting{
		OrgID:                      orgID,
		Scope:                      entity.SettingScopeOrg,
		RevenuePerInteraction:      &d.RevenuePerInteraction,
		ConversionRate:             &d.ConversionRate,
		MinutesSavedPerInteraction: &d.MinutesSavedPerInteraction,
		HourlyCost:                 &d.HourlyCost,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		tracer.Fail(span, err)
		logger.Error(ctx, "failed to seed default settings", err, "org_id", orgID)
		metrics.SettingsSeedTotal.WithLabelValues("error").Inc()
		return BootstrapResult{Reason: "seed write failed"}
	}
	if _, err := s.orgRepo.MarkSettingsSeeded(ctx, orgID, s.now()); err != nil {
		logger.Warn(ctx, "failed to mark settings seeded", "org_id", orgID, "error", err.Error())
	}

	s.invalidate(ctx, orgID)
	metrics.SettingsSeedTotal.WithLabelValues("seeded").Inc()
	logger.Info(ctx, "default business settings seeded", "org_id", orgID)
	return BootstrapResult{Seeded: true}
}
