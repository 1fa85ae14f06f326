package billing

import (
	"context"
	"strings"

	apperrors "agent-console/pkg/errors"
	"agent-console/pkg/logger"
)

// Publisher 成本重算任务发布端口
type Publisher interface {
	PublishCostRecalc(ctx context.Context, orgID, provider, requestedBy string) (string, error)
}

// Service 计费服务
type Service struct {
	publisher Publisher
}

// NewService 创建计费服务
func NewService(publisher Publisher) *Service {
	return &Service{publisher: publisher}
}

// TriggerRecalc 投递异步重算任务，返回任务 ID
func (s *Service) TriggerRecalc(ctx context.Context, orgID, provider, userID string) (string, error) {
	if orgID == "" {
		return "", apperrors.ErrOrganizationNotFound
	}
	jobID, err := s.publisher.PublishCostRecalc(ctx, orgID, strings.TrimSpace(provider), userID)
	if err != nil {
		logger.Error(ctx, "failed to enqueue cost recalculation", err, "org_id", orgID)
		return "", apperrors.Wrap(err, apperrors.CodeQueueError, "failed to enqueue cost recalculation")
	}
	logger.Info(ctx, "cost recalculation enqueued", "org_id", orgID, "job_id", jobID, "provider", provider)
	return jobID, nil
}
