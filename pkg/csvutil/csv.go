// Package csvutil 提供有序字段行的 CSV 编码
package csvutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Field 一个有序的键值对
type Field struct {
	Key   string
	Value any
}

// Row 一行数据，字段顺序即列顺序
type Row []Field

// Encode 编码为 CSV 文本。表头取第一行的键，后续行按位置对应。
// 含逗号、双引号、换行的值用双引号包裹，内部双引号加倍，行尾为 \n
func Encode(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	header := make([]string, len(rows[0]))
	for i, f := range rows[0] {
		header[i] = Quote(f.Key)
	}
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, f := range row {
			cells[i] = Quote(Format(f.Value))
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// Quote 按需加引号
func Quote(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Format 值转字符串，nil 为空串
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Filename 导出文件名 <metric>_<YYYYMMDD_HHMMSS>.csv
func Filename(metric string, at time.Time) string {
	return fmt.Sprintf("%s_%s.csv", metric, at.Format("20060102_150405"))
}
