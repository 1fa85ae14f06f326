// Package billing 提供模型价格表、成本重算与用量记录
package billing

import (
	"math"
	"strings"

	"agent-console/internal/config"
)

// PriceTable 模型价格表，单位 USD / 1K tokens
type PriceTable struct {
	byModel map[string][]config.ModelPrice
}

// NewPriceTable 由配置构建价格表，模型名不区分大小写
func NewPriceTable(prices []config.ModelPrice) *PriceTable {
	t := &PriceTable{byModel: make(map[string][]config.ModelPrice, len(prices))}
	for _, p := range prices {
		key := strings.ToLower(strings.TrimSpace(p.Model))
		if key == "" {
			continue
		}
		t.byModel[key] = append(t.byModel[key], p)
	}
	return t
}

// Lookup 查找模型价格。配置了 provider 的条目优先精确匹配，
// 未配置 provider 的条目匹配任意供应商
func (t *PriceTable) Lookup(provider, model string) (config.ModelPrice, bool) {
	candidates := t.byModel[strings.ToLower(strings.TrimSpace(model))]
	var fallback *config.ModelPrice
	for i := range candidates {
		c := candidates[i]
		if c.Provider == "" {
			if fallback == nil {
				fallback = &candidates[i]
			}
			continue
		}
		if strings.EqualFold(c.Provider, provider) {
			return c, true
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return config.ModelPrice{}, false
}

// Cost 按价格计算成本，保留 6 位小数
func Cost(p config.ModelPrice, promptTokens, completionTokens int64) float64 {
	c := float64(promptTokens)/1000*p.Prompt + float64(completionTokens)/1000*p.Completion
	return math.Round(c*1e6) / 1e6
}

// Len 价格条目数
func (t *PriceTable) Len() int {
	n := 0
	for _, v := range t.byModel {
		n += len(v)
	}
	return n
}
