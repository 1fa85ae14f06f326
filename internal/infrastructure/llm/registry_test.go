package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-console/internal/config"
	"agent-console/internal/domain/service"
	apperrors "agent-console/pkg/errors"
)

type stubChatModel struct {
	reply *schema.Message
	err   error
	calls int
}

func (s *stubChatModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

type captureRecorder struct {
	inputs []service.LLMUsageInput
}

func (c *captureRecorder) Record(_ context.Context, in service.LLMUsageInput) error {
	c.inputs = append(c.inputs, in)
	return nil
}

func testConfig() config.ProvidersConfig {
	return config.ProvidersConfig{Items: map[string]config.ProviderConfig{
		"OpenAI":    {Kind: KindOpenAI, Models: []string{"gpt-4o", "gpt-4o-mini"}, TestModel: "gpt-4o-mini"},
		"anthropic": {Kind: KindStatic, Models: []string{"claude-3-5-sonnet"}},
		"empty":     {Kind: KindOpenAI},
	}}
}

func TestRegistry_ListAndModels(t *testing.T) {
	r := NewRegistry(testConfig(), nil)

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "anthropic", list[0].Name)
	assert.False(t, list[0].Testable)
	assert.Equal(t, "openai", list[2].Name)
	assert.True(t, list[2].Testable)

	models, err := r.Models("OPENAI")
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, models)

	_, err = r.Models("mistral")
	assert.ErrorIs(t, err, apperrors.ErrProviderNotFound)
}

func TestRegistry_TestConnection(t *testing.T) {
	stub := &stubChatModel{reply: &schema.Message{
		Role:         schema.Assistant,
		Content:      "pong",
		ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 3, CompletionTokens: 1, TotalTokens: 4}},
	}}
	rec := &captureRecorder{}
	var builtFor string
	r := NewRegistry(testConfig(), rec).WithBuilder(func(_ context.Context, _ config.ProviderConfig, m string) (model.BaseChatModel, error) {
		builtFor = m
		return stub, nil
	})
	ctx := context.Background()

	res, err := r.TestConnection(ctx, "org-1", "openai")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", builtFor)
	assert.Equal(t, "pong", res.Reply)
	assert.Equal(t, 3, res.PromptTokens)
	require.Len(t, rec.inputs, 1)
	assert.Equal(t, "org-1", rec.inputs[0].OrgID)
	assert.Equal(t, 1, rec.inputs[0].CompletionTokens)

	// ChatModel 被缓存复用
	_, err = r.TestConnection(ctx, "org-1", "openai")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)

	stub.err = errors.New("401 unauthorized")
	_, err = r.TestConnection(ctx, "org-1", "openai")
	assert.ErrorIs(t, err, apperrors.ErrProviderCallFailed)
	assert.Len(t, rec.inputs, 2)
}

func TestRegistry_TestConnectionRejected(t *testing.T) {
	r := NewRegistry(testConfig(), nil)
	ctx := context.Background()

	_, err := r.TestConnection(ctx, "org-1", "anthropic")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	_, err = r.TestConnection(ctx, "org-1", "empty")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	_, err = r.TestConnection(ctx, "org-1", "nope")
	assert.ErrorIs(t, err, apperrors.ErrProviderNotFound)
}
