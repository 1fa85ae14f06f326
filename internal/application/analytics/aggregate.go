package analytics

import (
	"fmt"
	"sort"

	"agent-console/internal/domain/entity"
)

// Metric 排序指标
type Metric string

const (
	MetricCost   Metric = "cost"
	MetricTokens Metric = "tokens"
	MetricCount  Metric = "count"
)

// ParseMetric 解析排序指标，空值默认 cost
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "":
		return MetricCost, nil
	case MetricCost, MetricTokens, MetricCount:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Group 一个分组的聚合结果
type Group struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Tokens    int64   `json:"tokens"`
	Cost      float64 `json:"cost"`
	Count     int     `json:"count"`
	Estimated bool    `json:"estimated"`
}

func (g Group) value(m Metric) float64 {
	switch m {
	case MetricTokens:
		return float64(g.Tokens)
	case MetricCount:
		return float64(g.Count)
	default:
		return g.Cost
	}
}

// KeyFunc 返回记录的分组键与展示名
type KeyFunc func(r *entity.UsageRecord) (key, label string)

// Aggregate 按 keyFn 分组求和，结果保持首次出现顺序
func Aggregate(records []*entity.UsageRecord, keyFn KeyFunc) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, r := range records {
		key, label := keyFn(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Label: label})
		}
		g := &groups[i]
		g.Tokens += r.TotalTokens
		g.Cost += r.CostUSD
		g.Count++
		g.Estimated = g.Estimated || r.CostEstimated
	}
	return groups
}

// SortGroups 按指标降序，相等时保持原顺序
func SortGroups(groups []Group, m Metric) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].value(m) > groups[j].value(m)
	})
}

// ByAgent 按智能体分组并排序
func ByAgent(records []*entity.UsageRecord, dir *AgentDirectory, m Metric) []Group {
	groups := Aggregate(records, func(r *entity.UsageRecord) (string, string) {
		return r.AgentID, dir.Name(r.AgentID)
	})
	SortGroups(groups, m)
	return groups
}

// ByCategory 按智能体类别分组并排序
func ByCategory(records []*entity.UsageRecord, dir *AgentDirectory, m Metric) []Group {
	groups := Aggregate(records, func(r *entity.UsageRecord) (string, string) {
		c := dir.Category(r.AgentID)
		return c, c
	})
	SortGroups(groups, m)
	return groups
}

// Totals 窗口总量
type Totals struct {
	Tokens    int64   `json:"tokens"`
	Cost      float64 `json:"cost"`
	Count     int     `json:"count"`
	Estimated bool    `json:"estimated"`
}

// Summarize 汇总全部记录
func Summarize(records []*entity.UsageRecord) Totals {
	var t Totals
	for _, r := range records {
		t.Tokens += r.TotalTokens
		t.Cost += r.CostUSD
		t.Count++
		t.Estimated = t.Estimated || r.CostEstimated
	}
	return t
}

// MonthBucket 月度增长桶
type MonthBucket struct {
	Month        string `json:"month"`
	Interactions int    `json:"interactions"`
	ActiveAgents int    `json:"active_agents"`
}

// Monthly 按 UTC 年月分桶，统计交互数与活跃智能体数，月份升序
func Monthly(records []*entity.UsageRecord) []MonthBucket {
	type acc struct {
		count  int
		agents map[string]struct{}
	}
	buckets := make(map[string]*acc)
	for _, r := range records {
		month := r.CreatedAt.UTC().Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			b = &acc{agents: make(map[string]struct{})}
			buckets[month] = b
		}
		b.count++
		if r.AgentID != "" {
			b.agents[r.AgentID] = struct{}{}
		}
	}

	out := make([]MonthBucket, 0, len(buckets))
	for month, b := range buckets {
		out = append(out, MonthBucket{Month: month, Interactions: b.count, ActiveAgents: len(b.agents)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
