package analytics

import (
	"math"
	"sort"
)

// Percentile 对升序样本做线性插值分位数，q 取值 [0,1]，调用方保证样本非空
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := float64(n-1) * q
	base := int(math.Floor(pos))
	rest := pos - float64(base)
	if base+1 >= n {
		return sorted[n-1]
	}
	return sorted[base] + rest*(sorted[base+1]-sorted[base])
}

// DurationStats 耗时统计。样本为空时 Avg/P50/P95 为 nil，表示无数据
type DurationStats struct {
	Samples int      `json:"samples"`
	Avg     *float64 `json:"avg_ms"`
	P50     *float64 `json:"p50_ms"`
	P95     *float64 `json:"p95_ms"`
}

// HasData 是否有样本
func (s DurationStats) HasData() bool {
	return s.Samples > 0
}

// SummarizeDurations 计算均值、P50、P95
func SummarizeDurations(values []float64) DurationStats {
	if len(values) == 0 {
		return DurationStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	avg := sum / float64(len(sorted))
	p50 := Percentile(sorted, 0.5)
	p95 := Percentile(sorted, 0.95)

	return DurationStats{
		Samples: len(sorted),
		Avg:     &avg,
		P50:     &p50,
		P95:     &p95,
	}
}
