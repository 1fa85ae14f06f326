package analytics

import "agent-console/internal/domain/entity"

// ParameterSet 业务参数集合，nil 表示该作用域未设置
type ParameterSet struct {
	RevenuePerInteraction      *float64 `json:"revenue_per_interaction"`
	ConversionRate             *float64 `json:"conversion_rate"`
	MinutesSavedPerInteraction *float64 `json:"minutes_saved_per_interaction"`
	HourlyCost                 *float64 `json:"hourly_cost"`
}

// ParameterSetOf 从参数行提取字段，nil 行返回空集合
func ParameterSetOf(s *entity.BusinessSetting) ParameterSet {
	if s == nil {
		return ParameterSet{}
	}
	return ParameterSet{
		RevenuePerInteraction:      s.RevenuePerInteraction,
		ConversionRate:             s.ConversionRate,
		MinutesSavedPerInteraction: s.MinutesSavedPerInteraction,
		HourlyCost:                 s.HourlyCost,
	}
}

// firstSet 返回第一个非 nil 的值
func firstSet(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// Resolve 逐字段按 agent > category > org 取最具体的非空值
func Resolve(agent, category, org ParameterSet) ParameterSet {
	return ParameterSet{
		RevenuePerInteraction:      firstSet(agent.RevenuePerInteraction, category.RevenuePerInteraction, org.RevenuePerInteraction),
		ConversionRate:             firstSet(agent.ConversionRate, category.ConversionRate, org.ConversionRate),
		MinutesSavedPerInteraction: firstSet(agent.MinutesSavedPerInteraction, category.MinutesSavedPerInteraction, org.MinutesSavedPerInteraction),
		HourlyCost:                 firstSet(agent.HourlyCost, category.HourlyCost, org.HourlyCost),
	}
}

// ResolveRows 从候选行中挑出三个作用域并解析
func ResolveRows(rows []*entity.BusinessSetting, agentID, category string) ParameterSet {
	var agent, cat, org *entity.BusinessSetting
	for _, r := range rows {
		switch {
		case r.Scope == entity.SettingScopeOrg:
			org = r
		case r.Scope == entity.SettingScopeCategory && category != "" && r.ScopeKey == category:
			cat = r
		case r.Scope == entity.SettingScopeAgent && agentID != "" && r.ScopeKey == agentID:
			agent = r
		}
	}
	return Resolve(ParameterSetOf(agent), ParameterSetOf(cat), ParameterSetOf(org))
}

// Parameters 缺省补零后的参数
type Parameters struct {
	RevenuePerInteraction      float64 `json:"revenue_per_interaction"`
	ConversionRate             float64 `json:"conversion_rate"`
	MinutesSavedPerInteraction float64 `json:"minutes_saved_per_interaction"`
	HourlyCost                 float64 `json:"hourly_cost"`
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// OrZero 未设置的字段补 0
func (p ParameterSet) OrZero() Parameters {
	return Parameters{
		RevenuePerInteraction:      orZero(p.RevenuePerInteraction),
		ConversionRate:             orZero(p.ConversionRate),
		MinutesSavedPerInteraction: orZero(p.MinutesSavedPerInteraction),
		HourlyCost:                 orZero(p.HourlyCost),
	}
}
