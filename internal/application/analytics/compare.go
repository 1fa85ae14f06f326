package analytics

import "math"

// PercentChange 环比百分比，保留一位小数；上期为 0 时，本期大于 0 记 100，否则 0
func PercentChange(cur, prev float64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return round1((cur - prev) / prev * 100)
}

// Comparison 与前一等长窗口的对比。上期数据未能加载时 BaselineMissing 为 true，各百分比为 nil
type Comparison struct {
	PreviousWindow  Window   `json:"previous_window"`
	Previous        Totals   `json:"previous"`
	BaselineMissing bool     `json:"baseline_missing"`
	TokensPct       *float64 `json:"tokens_pct"`
	CostPct         *float64 `json:"cost_pct"`
	InteractionsPct *float64 `json:"interactions_pct"`
}

// Compare 计算本期相对上期的变化
func Compare(cur, prev Totals, prevWindow Window) Comparison {
	return Comparison{
		PreviousWindow:  prevWindow,
		Previous:        prev,
		TokensPct:       pct(PercentChange(float64(cur.Tokens), float64(prev.Tokens))),
		CostPct:         pct(PercentChange(cur.Cost, prev.Cost)),
		InteractionsPct: pct(PercentChange(float64(cur.Count), float64(prev.Count))),
	}
}

// MissingBaseline 上期数据不可用时的对比结果
func MissingBaseline(prevWindow Window) Comparison {
	return Comparison{PreviousWindow: prevWindow, BaselineMissing: true}
}

func pct(v float64) *float64 {
	return &v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
