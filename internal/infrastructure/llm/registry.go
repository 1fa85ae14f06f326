// Package llm 提供模型供应商能力表：模型列表与连通性测试
package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"

	"agent-console/internal/config"
	"agent-console/internal/domain/service"
	apperrors "agent-console/pkg/errors"
	"agent-console/pkg/logger"
	"agent-console/pkg/metrics"
	"agent-console/pkg/tracer"
)

const (
	KindOpenAI = "openai"
	KindStatic = "static"
)

const defaultTestTimeout = 15 * time.Second

// ProviderInfo 供应商能力描述
type ProviderInfo struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Models   []string `json:"models"`
	Testable bool     `json:"testable"`
}

// TestResult 连通性测试结果
type TestResult struct {
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	LatencyMs        int64  `json:"latency_ms"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	Reply            string `json:"reply"`
}

// ChatModelBuilder 构建 ChatModel，测试中可替换
type ChatModelBuilder func(ctx context.Context, cfg config.ProviderConfig, modelName string) (model.BaseChatModel, error)

// Registry 供应商能力表，按名称分派
type Registry struct {
	providers map[string]config.ProviderConfig
	build     ChatModelBuilder
	recorder  service.LLMUsageRecorder

	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewRegistry 由配置创建能力表，recorder 可为 nil
func NewRegistry(cfg config.ProvidersConfig, recorder service.LLMUsageRecorder) *Registry {
	providers := make(map[string]config.ProviderConfig, len(cfg.Items))
	for name, p := range cfg.Items {
		providers[strings.ToLower(name)] = p
	}
	return &Registry{
		providers: providers,
		build:     newOpenAIChatModel,
		recorder:  recorder,
		models:    make(map[string]model.BaseChatModel),
	}
}

// WithBuilder 替换 ChatModel 构建函数
func (r *Registry) WithBuilder(b ChatModelBuilder) *Registry {
	r.build = b
	return r
}

func newOpenAIChatModel(ctx context.Context, cfg config.ProviderConfig, modelName string) (model.BaseChatModel, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTestTimeout
	}
	maxTokens := 8
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     modelName,
		MaxTokens: &maxTokens,
		Timeout:   timeout,
	})
}

func (r *Registry) lookup(name string) (string, config.ProviderConfig, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	p, ok := r.providers[key]
	if !ok {
		return "", config.ProviderConfig{}, apperrors.ErrProviderNotFound.WithDetail(name)
	}
	return key, p, nil
}

// List 按名称排序返回全部供应商
func (r *Registry) List() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(r.providers))
	for name, p := range r.providers {
		out = append(out, ProviderInfo{
			Name:     name,
			Kind:     p.Kind,
			Models:   append([]string{}, p.Models...),
			Testable: p.Kind == KindOpenAI,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Models 返回供应商可选模型
func (r *Registry) Models(name string) ([]string, error) {
	_, p, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]string{}, p.Models...), nil
}

// chatModel 惰性创建并缓存 ChatModel
func (r *Registry) chatModel(ctx context.Context, key string, p config.ProviderConfig, modelName string) (model.BaseChatModel, error) {
	cacheKey := key + "/" + modelName
	r.mu.RLock()
	m, ok := r.models[cacheKey]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok = r.models[cacheKey]; ok {
		return m, nil
	}
	m, err := r.build(ctx, p, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model for %s: %w", key, err)
	}
	r.models[cacheKey] = m
	return m, nil
}

// TestConnection 发送一次最小请求验证凭据与连通性，用量计入 orgID
func (r *Registry) TestConnection(ctx context.Context, orgID, name string) (*TestResult, error) {
	ctx, span := tracer.Start(ctx, "llm.Registry.TestConnection")
	defer span.End()

	key, p, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("llm.provider", key))
	if p.Kind != KindOpenAI {
		return nil, apperrors.ErrInvalidParam.WithDetail("provider " + key + " does not support connection tests")
	}

	modelName := p.TestModel
	if modelName == "" && len(p.Models) > 0 {
		modelName = p.Models[0]
	}
	if modelName == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("provider " + key + " has no test model")
	}

	cm, err := r.chatModel(ctx, key, p, modelName)
	if err != nil {
		tracer.Fail(span, err)
		metrics.ProviderTestTotal.WithLabelValues(key, "error").Inc()
		return nil, apperrors.ErrProviderCallFailed.WithError(err)
	}

	start := time.Now()
	msg, err := cm.Generate(withRunInfo(ctx, key, p.Kind), []*schema.Message{schema.UserMessage("ping")})
	elapsed := time.Since(start)
	metrics.ProviderTestDuration.WithLabelValues(key).Observe(elapsed.Seconds())
	if err != nil {
		tracer.Fail(span, err)
		metrics.ProviderTestTotal.WithLabelValues(key, "error").Inc()
		logger.Warn(ctx, "provider connection test failed", "provider", key, "model", modelName, "error", err.Error())
		return nil, apperrors.ErrProviderCallFailed.WithError(err).WithDetail(err.Error())
	}
	metrics.ProviderTestTotal.WithLabelValues(key, "ok").Inc()

	res := &TestResult{Provider: key, Model: modelName, LatencyMs: elapsed.Milliseconds()}
	if msg != nil {
		res.Reply = msg.Content
		if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
			res.PromptTokens = msg.ResponseMeta.Usage.PromptTokens
			res.CompletionTokens = msg.ResponseMeta.Usage.CompletionTokens
		}
	}

	if r.recorder != nil {
		_ = r.recorder.Record(ctx, service.LLMUsageInput{
			OrgID:            orgID,
			Provider:         key,
			Model:            modelName,
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.CompletionTokens,
			DurationMs:       res.LatencyMs,
		})
	}
	return res, nil
}
