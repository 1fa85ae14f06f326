package redis

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// sequenceTTL 视图闲置后序号自动过期
const sequenceTTL = 24 * time.Hour

// Sequencer 基于 INCR 的看板请求序号，多实例共享
type Sequencer struct {
	client *Client
	prefix string
}

// NewSequencer 创建序号生成器
func NewSequencer(client *Client, prefix string) *Sequencer {
	return &Sequencer{client: client, prefix: prefix}
}

func (s *Sequencer) key(view string) string {
	return fmt.Sprintf("%s:seq:%s", s.prefix, view)
}

// Next 分配新序号
func (s *Sequencer) Next(ctx context.Context, view string) (uint64, error) {
	ctx, span := tracer.Start(ctx, "redis.Sequencer.Next")
	defer span.End()
	span.SetAttributes(attribute.String("sequence.view", view))

	pipe := s.client.rdb.TxPipeline()
	incr := pipe.Incr(ctx, s.key(view))
	pipe.Expire(ctx, s.key(view), sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to allocate sequence: %w", err)
	}
	return uint64(incr.Val()), nil
}

// Current 读取最近分配的序号，不存在时为 0
func (s *Sequencer) Current(ctx context.Context, view string) (uint64, error) {
	ctx, span := tracer.Start(ctx, "redis.Sequencer.Current")
	defer span.End()

	n, err := s.client.rdb.Get(ctx, s.key(view)).Uint64()
	if err != nil {
		if IsNil(err) {
			return 0, nil
		}
		span.RecordError(err)
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	return n, nil
}
