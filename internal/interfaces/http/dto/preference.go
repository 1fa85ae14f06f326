package dto

import (
	"encoding/json"
	"regexp"
)

var preferenceKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,63}$`)

// ValidPreferenceKey 偏好键仅允许小写字母、数字和 _ . -，最长 64
func ValidPreferenceKey(key string) bool {
	return preferenceKeyPattern.MatchString(key)
}

// PutPreferenceRequest 偏好写入请求，value 为任意 JSON 文档
type PutPreferenceRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

// PreferenceResponse 偏好响应
type PreferenceResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}
