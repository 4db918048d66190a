package docschema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// FieldStat describes one field path across a set of documents.
type FieldStat struct {
	Path          string   `json:"path"`                  // dotted path, arrays as "items[].sku"
	Type          string   `json:"type"`                  // JSON Schema type, unions joined with "|"
	Frequency     float64  `json:"frequency"`             // fraction of parent documents carrying the field
	Required      bool     `json:"required"`              // present everywhere and never null
	Nullable      bool     `json:"nullable"`              // null at least once
	DistinctCount int      `json:"distinct_count"`        // distinct non-null values
	Examples      []any    `json:"examples"`              // up to 3 leaf values
	Format        string   `json:"format,omitempty"`      // objectid, date-time, uuid, url, email, enum, ...
	EnumValues    []string `json:"enum_values,omitempty"` // all distinct values when format is "enum"
}

const (
	defaultMaxDepth       = 5
	maxExamples           = 3
	minValuesForFormat    = 5
	maxEnumDistinctValues = 10
)

var (
	uuidRegex    = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	iso8601Regex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2})?`)
	urlRegex     = regexp.MustCompile(`^https?://`)
	emailRegex   = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
)

// FieldStats walks schema and tabulates every field path against docs,
// parents before children. Nesting deeper than five levels is cut off with a
// marker row.
func FieldStats(schema *jsonschema.Schema, docs []any) []FieldStat {
	if schema == nil || len(docs) == 0 {
		return nil
	}
	var stats []FieldStat
	walk(schema, "", docs, 0, &stats)
	return stats
}

func walk(schema *jsonschema.Schema, path string, docs []any, depth int, stats *[]FieldStat) {
	if depth > defaultMaxDepth {
		*stats = append(*stats, FieldStat{Path: path + " (truncated at depth limit)", Type: "..."})
		return
	}
	if schema.Type != "object" || schema.Properties == nil {
		return
	}

	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		name, prop := pair.Key, pair.Value

		fieldPath := name
		if path != "" {
			fieldPath = path + "." + name
		}
		*stats = append(*stats, fieldStat(fieldPath, prop, name, docs))

		switch {
		case prop.Type == "object" && prop.Properties != nil:
			walk(prop, fieldPath, fieldValues(name, docs), depth+1, stats)
		case prop.Type == "array" && prop.Items != nil && prop.Items.Type == "object" && prop.Items.Properties != nil:
			walk(prop.Items, fieldPath+"[]", arrayItems(name, docs), depth+1, stats)
		}
	}
}

func fieldStat(path string, schema *jsonschema.Schema, field string, docs []any) FieldStat {
	stat := FieldStat{
		Path:   path,
		Type:   resolveType(schema),
		Format: schema.Format,
	}

	present, nulls := 0, 0
	distinct := make(map[string]bool)
	var examples []any
	var strs []string

	for _, d := range docs {
		obj, ok := d.(map[string]any)
		if !ok {
			continue
		}
		val, ok := obj[field]
		if !ok {
			continue
		}
		present++
		if val == nil {
			nulls++
			continue
		}

		leaf, isLeaf := leafValue(val)
		key := fmt.Sprintf("%v", val)
		if !distinct[key] {
			distinct[key] = true
			if isLeaf && len(examples) < maxExamples {
				examples = append(examples, leaf)
			}
		}
		if s, ok := leaf.(string); ok && isLeaf {
			strs = append(strs, s)
		}
	}

	if len(docs) > 0 {
		stat.Frequency = float64(present) / float64(len(docs))
	}
	stat.Required = present == len(docs) && nulls == 0
	stat.Nullable = nulls > 0
	stat.DistinctCount = len(distinct)
	stat.Examples = examples

	if stat.Format == "" && stat.Type == "string" && len(strs) >= minValuesForFormat {
		stat.Format, stat.EnumValues = detectFormat(strs)
	}
	return stat
}

// leafValue unwraps Extended JSON type wrappers. Objects and arrays are not
// leaves; their children get rows of their own.
func leafValue(v any) (any, bool) {
	switch val := v.(type) {
	case []any:
		return nil, false
	case map[string]any:
		k, ok := wrapperKey(val)
		if !ok {
			return nil, false
		}
		if inner, ok := val[k].(string); ok {
			return inner, true
		}
		return val, true
	default:
		return v, true
	}
}

// detectFormat recognizes common string formats, falling back to enum when
// there are few distinct values.
func detectFormat(values []string) (string, []string) {
	all := func(re *regexp.Regexp) bool {
		for _, v := range values {
			if !re.MatchString(v) {
				return false
			}
		}
		return true
	}

	switch {
	case all(uuidRegex):
		return "uuid", nil
	case all(iso8601Regex):
		return "iso8601", nil
	case all(urlRegex):
		return "url", nil
	case all(emailRegex):
		return "email", nil
	}

	distinct := make(map[string]bool)
	for _, v := range values {
		distinct[v] = true
	}
	if len(distinct) > maxEnumDistinctValues {
		return "", nil
	}
	enum := make([]string, 0, len(distinct))
	for v := range distinct {
		enum = append(enum, v)
	}
	sort.Strings(enum)
	return "enum", enum
}

// resolveType returns the type of schema, joining anyOf branches with "|".
func resolveType(schema *jsonschema.Schema) string {
	if schema.Type != "" {
		return schema.Type
	}
	if len(schema.AnyOf) > 0 {
		types := make([]string, 0, len(schema.AnyOf))
		for _, s := range schema.AnyOf {
			if s.Type != "" {
				types = append(types, s.Type)
			}
		}
		return strings.Join(types, "|")
	}
	return "unknown"
}
