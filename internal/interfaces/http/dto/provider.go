package dto

// ProviderModelsResponse 供应商模型列表响应
type ProviderModelsResponse struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// RecalculateRequest 成本重算请求，provider 为空表示全部供应商
type RecalculateRequest struct {
	Provider string `json:"provider"`
}

// RecalculateResponse 成本重算受理响应
type RecalculateResponse struct {
	JobID    string `json:"job_id"`
	Provider string `json:"provider,omitempty"`
}
