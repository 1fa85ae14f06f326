package analytics

import "math"

// KPIs 由聚合总量与业务参数推导的经营指标
type KPIs struct {
	Interactions       int     `json:"interactions"`
	TotalCost          float64 `json:"total_cost"`
	CostPerInteraction float64 `json:"cost_per_interaction"`
	RevenueImpacted    float64 `json:"revenue_impacted"`
	Conversions        int64   `json:"conversions"`
	TimeSavedHours     float64 `json:"time_saved_hours"`
	ROI                float64 `json:"roi_pct"`
}

// DeriveKPIs 纯函数：成本为 0 时 ROI 记 0
func DeriveKPIs(t Totals, p Parameters) KPIs {
	interactions := float64(t.Count)
	revenue := interactions * p.RevenuePerInteraction
	hours := interactions * p.MinutesSavedPerInteraction / 60

	k := KPIs{
		Interactions:    t.Count,
		TotalCost:       t.Cost,
		RevenueImpacted: revenue,
		Conversions:     int64(math.Round(interactions * p.ConversionRate)),
		TimeSavedHours:  hours,
	}
	if t.Count > 0 {
		k.CostPerInteraction = t.Cost / interactions
	}
	if t.Cost > 0 {
		k.ROI = ((revenue + hours*p.HourlyCost) - t.Cost) / t.Cost * 100
	}
	return k
}

// Rounded 返回用于展示的取整副本
func (k KPIs) Rounded() KPIs {
	k.TotalCost = round2(k.TotalCost)
	k.CostPerInteraction = math.Round(k.CostPerInteraction*10000) / 10000
	k.RevenueImpacted = round2(k.RevenueImpacted)
	k.TimeSavedHours = round2(k.TimeSavedHours)
	k.ROI = round1(k.ROI)
	return k
}
