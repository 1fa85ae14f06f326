// Package service 定义跨层的领域服务端口
package service

import "context"

// LLMUsageInput 一次 LLM 调用的可计费数据
type LLMUsageInput struct {
	OrgID   string
	AgentID string

	Provider string
	Model    string

	PromptTokens     int
	CompletionTokens int
	DurationMs       int64
}

// LLMUsageRecorder 记录 LLM 调用用量，实现应为 best-effort，不阻塞调用方
type LLMUsageRecorder interface {
	Record(ctx context.Context, in LLMUsageInput) error
}
