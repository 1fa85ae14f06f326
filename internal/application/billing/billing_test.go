package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-console/internal/config"
	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	"agent-console/internal/domain/service"
	apperrors "agent-console/pkg/errors"
)

var testPrices = []config.ModelPrice{
	{Model: "gpt-4o", Provider: "openai", Prompt: 0.005, Completion: 0.015},
	{Model: "gpt-4o", Prompt: 0.01, Completion: 0.03},
	{Model: "deepseek-chat", Prompt: 0.00027, Completion: 0.0011},
}

type memUsageRepo struct {
	records   []*entity.UsageRecord
	updates   []repository.CostUpdate
	updateErr error
}

func (m *memUsageRepo) Create(_ context.Context, r *entity.UsageRecord) error {
	m.records = append(m.records, r)
	return nil
}

func (m *memUsageRepo) List(context.Context, repository.UsageQuery) ([]*entity.UsageRecord, error) {
	return m.records, nil
}

func (m *memUsageRepo) ListForRecalc(_ context.Context, orgID, provider, afterID string, limit int) ([]*entity.UsageRecord, error) {
	sorted := append([]*entity.UsageRecord(nil), m.records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	var out []*entity.UsageRecord
	for _, r := range sorted {
		if r.OrgID != orgID || r.ID <= afterID || (provider != "" && r.Provider != provider) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memUsageRepo) UpdateCosts(_ context.Context, updates []repository.CostUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, updates...)
	for _, u := range updates {
		for _, r := range m.records {
			if r.ID == u.ID {
				r.CostUSD = u.CostUSD
				r.CostEstimated = u.Estimated
			}
		}
	}
	return nil
}

type memTimingRepo struct {
	timings []*entity.ResponseTiming
}

func (m *memTimingRepo) Create(_ context.Context, t *entity.ResponseTiming) error {
	m.timings = append(m.timings, t)
	return nil
}

func (m *memTimingRepo) List(context.Context, repository.UsageQuery) ([]*entity.ResponseTiming, error) {
	return m.timings, nil
}

func TestPriceTable_Lookup(t *testing.T) {
	table := NewPriceTable(testPrices)
	assert.Equal(t, 3, table.Len())

	tests := []struct {
		name       string
		provider   string
		model      string
		wantOK     bool
		wantPrompt float64
	}{
		{"provider specific", "OpenAI", "gpt-4o", true, 0.005},
		{"fallback for other provider", "azure", "GPT-4o", true, 0.01},
		{"provider agnostic entry", "deepseek", "deepseek-chat", true, 0.00027},
		{"unknown model", "openai", "gpt-5", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := table.Lookup(tt.provider, tt.model)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPrompt, p.Prompt)
		})
	}
}

func TestCost(t *testing.T) {
	price := config.ModelPrice{Prompt: 0.005, Completion: 0.015}
	assert.InDelta(t, 0.0125, Cost(price, 1000, 500), 1e-9)
	assert.Equal(t, 0.0, Cost(price, 0, 0))
}

func TestRecalculator_Run(t *testing.T) {
	repo := &memUsageRepo{}
	for i := 0; i < 5; i++ {
		repo.records = append(repo.records, &entity.UsageRecord{
			ID: fmt.Sprintf("r%d", i), OrgID: "org-1", Provider: "openai", Model: "gpt-4o",
			PromptTokens: 1000, CompletionTokens: 1000, CostEstimated: true,
		})
	}
	repo.records = append(repo.records,
		&entity.UsageRecord{ID: "r5", OrgID: "org-1", Provider: "openai", Model: "mystery", CostUSD: 0.7, CostEstimated: true},
		&entity.UsageRecord{ID: "r6", OrgID: "org-2", Provider: "openai", Model: "gpt-4o", PromptTokens: 1000},
	)

	rc := NewRecalculator(repo, NewPriceTable(testPrices), 2)
	res, err := rc.Run(context.Background(), "org-1", "")
	require.NoError(t, err)
	assert.Equal(t, 6, res.Scanned)
	assert.Equal(t, 5, res.Updated)
	assert.Equal(t, 1, res.Unpriced)

	for _, r := range repo.records[:5] {
		assert.InDelta(t, 0.02, r.CostUSD, 1e-9)
		assert.False(t, r.CostEstimated)
	}
	assert.Equal(t, 0.7, repo.records[5].CostUSD)
	assert.True(t, repo.records[5].CostEstimated)
	assert.Equal(t, 0.0, repo.records[6].CostUSD)

	// 再次执行时已是精确值，不产生更新
	res, err = rc.Run(context.Background(), "org-1", "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
}

func TestRecalculator_UpdateFailure(t *testing.T) {
	repo := &memUsageRepo{
		records:   []*entity.UsageRecord{{ID: "r1", OrgID: "org-1", Provider: "openai", Model: "gpt-4o", PromptTokens: 10}},
		updateErr: errors.New("db down"),
	}
	_, err := NewRecalculator(repo, NewPriceTable(testPrices), 10).Run(context.Background(), "org-1", "")
	assert.Error(t, err)
}

func TestUsageRecorder_Record(t *testing.T) {
	usage := &memUsageRepo{}
	timings := &memTimingRepo{}
	rec := NewUsageRecorder(usage, timings, NewPriceTable(testPrices))
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, service.LLMUsageInput{
		OrgID: "org-1", Provider: "openai", Model: "gpt-4o",
		PromptTokens: 1000, CompletionTokens: 1000, DurationMs: 420,
	}))
	require.Len(t, usage.records, 1)
	assert.Equal(t, int64(2000), usage.records[0].TotalTokens)
	assert.InDelta(t, 0.02, usage.records[0].CostUSD, 1e-9)
	assert.False(t, usage.records[0].CostEstimated)
	require.Len(t, timings.timings, 1)
	assert.Equal(t, 420.0, *timings.timings[0].DurationMs)

	require.NoError(t, rec.Record(ctx, service.LLMUsageInput{OrgID: "org-1", Provider: "x", Model: "unknown", PromptTokens: 5}))
	assert.True(t, usage.records[1].CostEstimated)
	assert.Len(t, timings.timings, 1)

	require.NoError(t, rec.Record(ctx, service.LLMUsageInput{Provider: "openai", Model: "gpt-4o"}))
	assert.Len(t, usage.records, 2)

	assert.Error(t, rec.Record(ctx, service.LLMUsageInput{OrgID: "org-1", PromptTokens: -1}))
}

type fakePublisher struct {
	err      error
	provider string
}

func (f *fakePublisher) PublishCostRecalc(_ context.Context, _, provider, _ string) (string, error) {
	f.provider = provider
	return "job-1", f.err
}

func TestService_TriggerRecalc(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewService(pub)

	id, err := svc.TriggerRecalc(context.Background(), "org-1", " openai ", "u1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)
	assert.Equal(t, "openai", pub.provider)

	_, err = svc.TriggerRecalc(context.Background(), "", "", "u1")
	assert.ErrorIs(t, err, apperrors.ErrOrganizationNotFound)

	pub.err = errors.New("redis down")
	_, err = svc.TriggerRecalc(context.Background(), "org-1", "", "u1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeQueueError, apperrors.AsAppError(err).Code)
}
