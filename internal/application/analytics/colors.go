package analytics

import (
	"context"
	"fmt"
	"sync"

	"agent-console/internal/domain/repository"
)

const colorPreferenceKey = "category_colors"

// ColorMap 已分配的类别配色，Order 记录首次出现顺序
type ColorMap struct {
	Assignments map[string]string `json:"assignments"`
	Order       []string          `json:"order"`
}

// AssignColors 为新类别按首次出现顺序分配下一个调色板槽位（超出后取模循环），
// 已有分配保持不变。返回是否有新增。
func AssignColors(m *ColorMap, categories []string, palette []string) bool {
	if m.Assignments == nil {
		m.Assignments = make(map[string]string)
	}
	if len(palette) == 0 {
		return false
	}
	changed := false
	for _, c := range categories {
		if _, ok := m.Assignments[c]; ok {
			continue
		}
		m.Assignments[c] = palette[len(m.Order)%len(palette)]
		m.Order = append(m.Order, c)
		changed = true
	}
	return changed
}

// ColorAssigner 持久化的类别配色分配器，按组织隔离
type ColorAssigner struct {
	store   repository.PreferenceStore
	palette []string
	mu      sync.Mutex
}

// NewColorAssigner 创建配色分配器
func NewColorAssigner(store repository.PreferenceStore, palette []string) *ColorAssigner {
	return &ColorAssigner{store: store, palette: palette}
}

func orgNamespace(orgID string) string {
	return "org:" + orgID
}

// Assign 返回 categories 的配色，新类别会写回存储
func (a *ColorAssigner) Assign(ctx context.Context, orgID string, categories []string) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var m ColorMap
	if _, err := a.store.Get(ctx, orgNamespace(orgID), colorPreferenceKey, &m); err != nil {
		return nil, fmt.Errorf("failed to load category colors: %w", err)
	}
	if AssignColors(&m, categories, a.palette) {
		if err := a.store.Put(ctx, orgNamespace(orgID), colorPreferenceKey, m); err != nil {
			return nil, fmt.Errorf("failed to save category colors: %w", err)
		}
	}

	out := make(map[string]string, len(categories))
	for _, c := range categories {
		out[c] = m.Assignments[c]
	}
	return out, nil
}
