package analytics

import (
	"strings"

	"agent-console/internal/domain/entity"
)

// DefaultOtherCategory 未映射到类别的智能体归入该类别
const DefaultOtherCategory = "Other"

// AgentDirectory agent → 名称/类别 查找表
type AgentDirectory struct {
	agents map[string]*entity.Agent
	other  string
}

// NewAgentDirectory 由智能体列表构建查找表
func NewAgentDirectory(agents []*entity.Agent, other string) *AgentDirectory {
	if other == "" {
		other = DefaultOtherCategory
	}
	m := make(map[string]*entity.Agent, len(agents))
	for _, a := range agents {
		m[a.ID] = a
	}
	return &AgentDirectory{agents: m, other: other}
}

// Category 返回智能体类别，未知或空类别返回 Other
func (d *AgentDirectory) Category(agentID string) string {
	if a, ok := d.agents[agentID]; ok && a.Category != "" {
		return a.Category
	}
	return d.other
}

// Name 返回智能体名称，未知时返回 ID
func (d *AgentDirectory) Name(agentID string) string {
	if a, ok := d.agents[agentID]; ok && a.Name != "" {
		return a.Name
	}
	return agentID
}

// Filter 本地过滤条件，各条件之间为 AND
type Filter struct {
	Category         string
	Provider         string
	Model            string
	IncludeEstimated bool
}

// matchAgent 类别条件
func (f Filter) matchAgent(agentID string, dir *AgentDirectory) bool {
	return f.Category == "" || dir.Category(agentID) == f.Category
}

// matchModel provider 精确匹配（不区分大小写），model 为不区分大小写的子串匹配
func (f Filter) matchModel(provider, model string) bool {
	if f.Provider != "" && !strings.EqualFold(provider, f.Provider) {
		return false
	}
	if f.Model != "" && !strings.Contains(strings.ToLower(model), strings.ToLower(f.Model)) {
		return false
	}
	return true
}

// ApplyUsage 过滤用量记录
func (f Filter) ApplyUsage(records []*entity.UsageRecord, dir *AgentDirectory) []*entity.UsageRecord {
	out := make([]*entity.UsageRecord, 0, len(records))
	for _, r := range records {
		if !f.IncludeEstimated && r.CostEstimated {
			continue
		}
		if !f.matchAgent(r.AgentID, dir) || !f.matchModel(r.Provider, r.Model) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ApplyTimings 过滤耗时记录，丢弃空耗时
func (f Filter) ApplyTimings(timings []*entity.ResponseTiming, dir *AgentDirectory) []*entity.ResponseTiming {
	out := make([]*entity.ResponseTiming, 0, len(timings))
	for _, t := range timings {
		if t.DurationMs == nil {
			continue
		}
		if !f.matchAgent(t.AgentID, dir) || !f.matchModel(t.Provider, t.Model) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ApplyOutcomes 过滤会话结果，只有类别条件适用
func (f Filter) ApplyOutcomes(outcomes []*entity.ConversationOutcome, dir *AgentDirectory) []*entity.ConversationOutcome {
	out := make([]*entity.ConversationOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if f.matchAgent(o.AgentID, dir) {
			out = append(out, o)
		}
	}
	return out
}
