package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LenientNumber 宽松数值：接受数字或数字字符串。
// null、缺省或空串表示未设置；其他无法解析的输入取 0。
type LenientNumber struct {
	Value *float64
}

// UnmarshalJSON 实现 json.Unmarshaler，从不返回错误
func (n *LenientNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		n.Value = zero()
		return nil
	}

	switch v := raw.(type) {
	case float64:
		n.Value = finite(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			n.Value = nil
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			n.Value = zero()
			return nil
		}
		n.Value = finite(f)
	default:
		n.Value = zero()
	}
	return nil
}

// MarshalJSON 未设置时输出 null
func (n LenientNumber) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

func zero() *float64 {
	v := 0.0
	return &v
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return zero()
	}
	return &v
}

// LenientInt 解析查询参数中的整数，无法解析时返回 0
func LenientInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// LenientBool 解析布尔查询参数，空值或无法解析时返回默认值
func LenientBool(s string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}
