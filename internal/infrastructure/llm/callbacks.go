package llm

import (
	"context"
	"sync"
	"time"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"agent-console/pkg/metrics"
)

type startTimeKey struct{}

type providerKey struct{}

var initOnce sync.Once

// RegisterCallbacks 注册 Eino 全局 ChatModel callbacks（进程级一次）
func RegisterCallbacks() {
	initOnce.Do(func() {
		handler := cbtemplate.NewHandlerHelper().
			ChatModel(newChatModelCallbackHandler()).
			Handler()
		einocallbacks.AppendGlobalHandlers(handler)
	})
}

// withRunInfo 为单次模型调用挂载供应商与回调管理器
func withRunInfo(ctx context.Context, provider, kind string) context.Context {
	ctx = context.WithValue(ctx, providerKey{}, provider)
	return einocallbacks.InitCallbacks(ctx, &einocallbacks.RunInfo{
		Name:      provider,
		Type:      kind,
		Component: components.ComponentOfChatModel,
	})
}

func providerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(providerKey{}).(string); ok {
		return v
	}
	return ""
}

// newChatModelCallbackHandler 记录模型调用次数、token 用量与追踪 span
func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocallbacks.RunInfo, input *model.CallbackInput) context.Context {
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

			attrs := []attribute.KeyValue{
				attribute.String("llm.provider", providerFromContext(ctx)),
				attribute.String("llm.model", modelNameFromInput(input)),
			}
			if info != nil {
				attrs = append(attrs, attribute.String("eino.type", info.Type))
			}
			ctx, _ = otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, _ *einocallbacks.RunInfo, output *model.CallbackOutput) context.Context {
			provider := providerFromContext(ctx)
			modelName := modelNameFromOutput(output)
			metrics.LLMCallTotal.WithLabelValues(provider, modelName, "success").Inc()

			span := trace.SpanFromContext(ctx)
			if output != nil && output.TokenUsage != nil {
				metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "prompt").Add(float64(output.TokenUsage.PromptTokens))
				metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "completion").Add(float64(output.TokenUsage.CompletionTokens))
				span.SetAttributes(
					attribute.Int("llm.prompt_tokens", output.TokenUsage.PromptTokens),
					attribute.Int("llm.completion_tokens", output.TokenUsage.CompletionTokens),
				)
			}
			if d := elapsed(ctx); d > 0 {
				span.SetAttributes(attribute.Int64("llm.duration_ms", d.Milliseconds()))
			}
			span.End()
			return ctx
		},

		OnError: func(ctx context.Context, _ *einocallbacks.RunInfo, err error) context.Context {
			metrics.LLMCallTotal.WithLabelValues(providerFromContext(ctx), "", "error").Inc()

			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return ctx
		},
	}
}

func elapsed(ctx context.Context) time.Duration {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start)
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}
