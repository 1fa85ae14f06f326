package csvutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitLine 按引号外的逗号切分一行，并还原加倍的引号
func splitLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}

func TestEncode_RoundTrip(t *testing.T) {
	out := Encode([]Row{{{Key: "name", Value: "a,b"}, {Key: "val", Value: 5}}})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,val", lines[0])
	assert.Equal(t, `"a,b",5`, lines[1])
	assert.Equal(t, []string{"a,b", "5"}, splitLine(lines[1]))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestEncode_Empty(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
}

func TestEncode_HeaderFromFirstRow(t *testing.T) {
	out := Encode([]Row{
		{{Key: "a", Value: 1}, {Key: "b", Value: nil}},
		{{Key: "a", Value: 2.5}, {Key: "b", Value: true}},
	})
	assert.Equal(t, "a,b\n1,\n2.5,true\n", out)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "agents_20240309_140507.csv", Filename("agents", at))
}
