package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-console/internal/application/analytics"
	"agent-console/internal/config"
	"agent-console/internal/domain/entity"
	apperrors "agent-console/pkg/errors"
)

type fakeSettingRepo struct {
	rows      []*entity.BusinessSetting
	upsertErr error
	lists     int
}

func (f *fakeSettingRepo) ListCandidates(_ context.Context, orgID, _, _ string) ([]*entity.BusinessSetting, error) {
	f.lists++
	var out []*entity.BusinessSetting
	for _, r := range f.rows {
		if r.OrgID == orgID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSettingRepo) List(ctx context.Context, orgID string) ([]*entity.BusinessSetting, error) {
	return f.ListCandidates(ctx, orgID, "", "")
}

func (f *fakeSettingRepo) Upsert(_ context.Context, s *entity.BusinessSetting) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for i, r := range f.rows {
		if r.OrgID == s.OrgID && r.Scope == s.Scope && r.ScopeKey == s.ScopeKey {
			f.rows[i] = s
			return nil
		}
	}
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeSettingRepo) CountByOrg(_ context.Context, orgID string) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

type fakeOrgRepo struct {
	orgs map[string]*entity.Organization
}

func (f *fakeOrgRepo) Create(_ context.Context, o *entity.Organization) error {
	f.orgs[o.ID] = o
	return nil
}
func (f *fakeOrgRepo) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	return f.orgs[id], nil
}
func (f *fakeOrgRepo) GetBySlug(context.Context, string) (*entity.Organization, error) {
	return nil, nil
}
func (f *fakeOrgRepo) Update(context.Context, *entity.Organization) error  { return nil }
func (f *fakeOrgRepo) ExistsBySlug(context.Context, string) (bool, error) { return false, nil }
func (f *fakeOrgRepo) MarkSettingsSeeded(_ context.Context, id string, at time.Time) (bool, error) {
	o := f.orgs[id]
	if o == nil || o.SettingsSeededAt != nil {
		return false, nil
	}
	o.SettingsSeededAt = &at
	return true, nil
}

// mapCache 进程内缓存，模拟读穿语义
type mapCache struct {
	data        map[string][]byte
	invalidated int
}

func (c *mapCache) GetOrLoad(ctx context.Context, key string, _ time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	v, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	c.data[key] = b
	return b, nil
}

func (c *mapCache) InvalidateOrgSettings(context.Context, string) error {
	c.invalidated++
	c.data = map[string][]byte{}
	return nil
}

func f64(v float64) *float64 { return &v }

func newTestService() (*Service, *fakeSettingRepo, *fakeOrgRepo, *mapCache) {
	repo := &fakeSettingRepo{}
	orgs := &fakeOrgRepo{orgs: map[string]*entity.Organization{"org-1": {ID: "org-1", Name: "Acme"}}}
	cache := &mapCache{data: map[string][]byte{}}
	svc := NewService(repo, orgs, cache, func(o, a, c string) string { return o + ":" + a + ":" + c }, time.Minute,
		config.BusinessParameters{RevenuePerInteraction: 5, ConversionRate: 0.1, MinutesSavedPerInteraction: 3, HourlyCost: 50})
	return svc, repo, orgs, cache
}

func TestService_EffectiveFieldWise(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.rows = []*entity.BusinessSetting{
		{OrgID: "org-1", Scope: entity.SettingScopeOrg, RevenuePerInteraction: f64(10), ConversionRate: f64(0.05), MinutesSavedPerInteraction: f64(2), HourlyCost: f64(40)},
		{OrgID: "org-1", Scope: entity.SettingScopeCategory, ScopeKey: "support", MinutesSavedPerInteraction: f64(3)},
		{OrgID: "org-1", Scope: entity.SettingScopeAgent, ScopeKey: "a1", HourlyCost: f64(80)},
	}

	got, err := svc.Effective(context.Background(), "org-1", "a1", "support")
	require.NoError(t, err)
	assert.Equal(t, analytics.Parameters{
		RevenuePerInteraction:      10,
		ConversionRate:             0.05,
		MinutesSavedPerInteraction: 3,
		HourlyCost:                 80,
	}, got.OrZero())
}

func TestService_EffectiveUsesCache(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Effective(ctx, "org-1", "", "")
	require.NoError(t, err)
	_, err = svc.Effective(ctx, "org-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)
}

func TestService_EffectiveWithoutCache(t *testing.T) {
	repo := &fakeSettingRepo{rows: []*entity.BusinessSetting{{OrgID: "org-1", Scope: entity.SettingScopeOrg, HourlyCost: f64(40)}}}
	svc := NewService(repo, &fakeOrgRepo{orgs: map[string]*entity.Organization{}}, nil, nil, 0, config.BusinessParameters{})

	got, err := svc.Effective(context.Background(), "org-1", "", "")
	require.NoError(t, err)
	require.NotNil(t, got.HourlyCost)
	assert.Equal(t, 40.0, *got.HourlyCost)
	assert.Nil(t, got.ConversionRate)
}

func TestService_Upsert(t *testing.T) {
	svc, repo, _, cache := newTestService()
	ctx := context.Background()

	t.Run("invalid scope", func(t *testing.T) {
		_, err := svc.Upsert(ctx, UpsertInput{OrgID: "org-1", Scope: "team"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
	})

	t.Run("category requires key", func(t *testing.T) {
		_, err := svc.Upsert(ctx, UpsertInput{OrgID: "org-1", Scope: entity.SettingScopeCategory})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
	})

	t.Run("org scope clears key and invalidates", func(t *testing.T) {
		row, err := svc.Upsert(ctx, UpsertInput{OrgID: "org-1", Scope: entity.SettingScopeOrg, ScopeKey: "ignored", Params: analytics.ParameterSet{HourlyCost: f64(10)}})
		require.NoError(t, err)
		assert.Equal(t, "", row.ScopeKey)
		assert.Equal(t, 1, cache.invalidated)

		_, err = svc.Upsert(ctx, UpsertInput{OrgID: "org-1", Scope: entity.SettingScopeOrg, Params: analytics.ParameterSet{HourlyCost: f64(20)}})
		require.NoError(t, err)
		require.Len(t, repo.rows, 1)
		assert.Equal(t, 20.0, *repo.rows[0].HourlyCost)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo.upsertErr = errors.New("db down")
		defer func() { repo.upsertErr = nil }()
		_, err := svc.Upsert(ctx, UpsertInput{OrgID: "org-1", Scope: entity.SettingScopeOrg})
		assert.Error(t, err)
	})
}

func TestService_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("non admin is skipped", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		res := svc.Bootstrap(ctx, "org-1", entity.UserRoleMember)
		assert.False(t, res.Seeded)
		assert.Empty(t, repo.rows)
	})

	t.Run("seeds once", func(t *testing.T) {
		svc, repo, orgs, _ := newTestService()
		res := svc.Bootstrap(ctx, "org-1", entity.UserRoleAdmin)
		assert.True(t, res.Seeded)
		require.Len(t, repo.rows, 1)
		assert.Equal(t, entity.SettingScopeOrg, repo.rows[0].Scope)
		assert.Equal(t, 5.0, *repo.rows[0].RevenuePerInteraction)
		assert.True(t, orgs.orgs["org-1"].SettingsSeeded())

		again := svc.Bootstrap(ctx, "org-1", entity.UserRoleAdmin)
		assert.False(t, again.Seeded)
		assert.Len(t, repo.rows, 1)
	})

	t.Run("existing settings are kept", func(t *testing.T) {
		svc, repo, orgs, _ := newTestService()
		repo.rows = []*entity.BusinessSetting{{OrgID: "org-1", Scope: entity.SettingScopeAgent, ScopeKey: "a1", HourlyCost: f64(1)}}
		res := svc.Bootstrap(ctx, "org-1", entity.UserRoleAdmin)
		assert.False(t, res.Seeded)
		assert.Len(t, repo.rows, 1)
		assert.True(t, orgs.orgs["org-1"].SettingsSeeded())
	})

	t.Run("write failure is not surfaced", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.upsertErr = errors.New("db down")
		res := svc.Bootstrap(ctx, "org-1", entity.UserRoleAdmin)
		assert.False(t, res.Seeded)
		assert.NotEmpty(t, res.Reason)
	})

	t.Run("unknown org", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		res := svc.Bootstrap(ctx, "missing", entity.UserRoleAdmin)
		assert.False(t, res.Seeded)
	})
}
