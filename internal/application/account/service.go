// Package account 提供注册、登录校验与组织管理员引导
package account

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	apperrors "agent-console/pkg/errors"
	"agent-console/pkg/logger"
	"agent-console/pkg/tracer"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 由组织名生成唯一 slug：规范化名称 + 8 位随机后缀
func Slugify(name string) string {
	base := strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if len(base) > 40 {
		base = strings.TrimRight(base[:40], "-")
	}
	if base == "" {
		base = "org"
	}
	return base + "-" + uuid.NewString()[:8]
}

// Service 账户服务
type Service struct {
	tx    repository.Transactor
	users repository.UserRepository
	orgs  repository.OrganizationRepository
}

// NewService 创建账户服务
func NewService(tx repository.Transactor, users repository.UserRepository, orgs repository.OrganizationRepository) *Service {
	return &Service{tx: tx, users: users, orgs: orgs}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	OrgName  string
}

// Register 创建组织及其首个管理员
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "account.Register")
	defer span.End()

	email := normalizeEmail(in.Email)
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		tracer.Fail(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check email")
	}
	if exists {
		return nil, apperrors.ErrConflict.WithDetail("email already registered")
	}

	var user *entity.User
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		org := entity.NewOrganization(strings.TrimSpace(in.OrgName), Slugify(in.OrgName))
		org.ID = uuid.NewString()
		if err := s.orgs.Create(txCtx, org); err != nil {
			return err
		}
		user = entity.NewUser(org.ID, email, strings.TrimSpace(in.Name))
		user.ID = uuid.NewString()
		user.Role = entity.UserRoleAdmin
		if err := user.SetPassword(in.Password); err != nil {
			return err
		}
		return s.users.Create(txCtx, user)
	})
	if err != nil {
		tracer.Fail(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "registration failed")
	}

	logger.Info(ctx, "organization registered", "org_id", user.OrgID, "user_id", user.ID)
	return user, nil
}

// Authenticate 校验邮箱密码，失败统一返回 ErrUnauthorized
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "account.Authenticate")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		tracer.Fail(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "login failed")
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, apperrors.ErrUnauthorized.WithDetail("invalid email or password")
	}

	org, err := s.orgs.GetByID(ctx, user.OrgID)
	if err != nil {
		tracer.Fail(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "login failed")
	}
	if org == nil || !org.IsActive() {
		return nil, apperrors.ErrForbidden.WithDetail("organization is not active")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn(ctx, "failed to update last login time", "error", err.Error(), "user_id", user.ID)
	}
	return user, nil
}

// EnsureAdminInput 引导管理员参数
type EnsureAdminInput struct {
	OrgName  string
	Email    string
	Password string
	Name     string
}

// EnsureAdmin 幂等地创建组织和管理员：邮箱已存在时返回已有用户，created 为 false
func (s *Service) EnsureAdmin(ctx context.Context, in EnsureAdminInput) (*entity.User, bool, error) {
	ctx, span := tracer.Start(ctx, "account.EnsureAdmin")
	defer span.End()

	existing, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		tracer.Fail(span, err)
		return nil, false, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load admin")
	}
	if existing != nil {
		if !existing.IsAdmin() {
			if err := s.users.UpdateRole(ctx, existing.ID, entity.UserRoleAdmin); err != nil {
				return nil, false, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to promote admin")
			}
			existing.Role = entity.UserRoleAdmin
		}
		return existing, false, nil
	}

	user, err := s.Register(ctx, RegisterInput{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		OrgName:  in.OrgName,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
