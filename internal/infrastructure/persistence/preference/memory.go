package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore 内存偏好存储，值以 JSON 保存，与持久化后端行为一致
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStore 创建内存偏好存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

// Get 读取偏好
func (s *MemoryStore) Get(_ context.Context, namespace, key string, out any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[namespace][key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode preference %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

// Put 写入偏好
func (s *MemoryStore) Put(_ context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preference: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.data[namespace] = ns
	}
	ns[key] = raw
	return nil
}

// Delete 删除偏好
func (s *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[namespace], key)
	return nil
}

// MemorySequencer 进程内看板请求序号
type MemorySequencer struct {
	mu   sync.Mutex
	seqs map[string]uint64
}

// NewMemorySequencer 创建进程内序号生成器
func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{seqs: make(map[string]uint64)}
}

// Next 分配新序号
func (s *MemorySequencer) Next(_ context.Context, view string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[view]++
	return s.seqs[view], nil
}

// Current 读取最近分配的序号
func (s *MemorySequencer) Current(_ context.Context, view string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[view], nil
}
