package democlient

import (
	"encoding/json"
	"fmt"
)

// Limits bound how much of each tool output is printed. Zero disables a limit.
type Limits struct {
	MaxItems  int // array elements kept before a "... (n more documents)" marker
	MaxString int // bytes of a string value kept before truncation
}

func (l Limits) enabled() bool {
	return l.MaxItems > 0 || l.MaxString > 0
}

// Trim applies l to a decoded JSON value. Object key order is not kept.
func (l Limits) Trim(v any) any {
	switch val := v.(type) {
	case []any:
		n := len(val)
		if l.MaxItems > 0 && n > l.MaxItems {
			n = l.MaxItems
		}
		out := make([]any, 0, n+1)
		for _, item := range val[:n] {
			out = append(out, l.Trim(item))
		}
		if n < len(val) {
			out = append(out, fmt.Sprintf("... (%d more)", len(val)-n))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = l.Trim(item)
		}
		return out
	case string:
		if l.MaxString <= 0 || len(val) <= l.MaxString {
			return val
		}
		return val[:l.MaxString] + fmt.Sprintf("... (%d more bytes)", len(val)-l.MaxString)
	default:
		return v
	}
}

// TrimText trims a JSON document and re-indents it.
func (l Limits) TrimText(text string) (string, error) {
	if !l.enabled() {
		return text, nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return "", fmt.Errorf("trimming output: %w", err)
	}
	b, err := json.MarshalIndent(l.Trim(v), "", "  ")
	if err != nil {
		return "", fmt.Errorf("trimming output: %w", err)
	}
	return string(b), nil
}
