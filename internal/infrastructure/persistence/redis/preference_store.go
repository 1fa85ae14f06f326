package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PreferenceStore 以 Hash 保存偏好文档，每个命名空间一个 Hash
type PreferenceStore struct {
	client *Client
	prefix string
}

// NewPreferenceStore 创建 Redis 偏好存储
func NewPreferenceStore(client *Client, prefix string) *PreferenceStore {
	return &PreferenceStore{client: client, prefix: prefix}
}

func (s *PreferenceStore) hashKey(namespace string) string {
	return fmt.Sprintf("%s:%s", s.prefix, namespace)
}

// Get 读取偏好
func (s *PreferenceStore) Get(ctx context.Context, namespace, key string, out any) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.PreferenceStore.Get",
		trace.WithAttributes(attribute.String("pref.namespace", namespace), attribute.String("pref.key", key)))
	defer span.End()

	raw, err := s.client.rdb.HGet(ctx, s.hashKey(namespace), key).Bytes()
	if err != nil {
		if IsNil(err) {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("failed to get preference: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode preference %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

// Put 写入偏好
func (s *PreferenceStore) Put(ctx context.Context, namespace, key string, value any) error {
	ctx, span := tracer.Start(ctx, "redis.PreferenceStore.Put",
		trace.WithAttributes(attribute.String("pref.namespace", namespace), attribute.String("pref.key", key)))
	defer span.End()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preference: %w", err)
	}
	if err := s.client.rdb.HSet(ctx, s.hashKey(namespace), key, raw).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to put preference: %w", err)
	}
	return nil
}

// Delete 删除偏好
func (s *PreferenceStore) Delete(ctx context.Context, namespace, key string) error {
	ctx, span := tracer.Start(ctx, "redis.PreferenceStore.Delete")
	defer span.End()

	if err := s.client.rdb.HDel(ctx, s.hashKey(namespace), key).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete preference: %w", err)
	}
	return nil
}
