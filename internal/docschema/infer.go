// Package docschema describes the nested shape of query results.
//
// Input is the relaxed Extended JSON the query tools return: a single
// document, an array of documents, or null. Type wrappers such as
// {"$oid": ...} and {"$date": ...} are leaves with a format, not objects.
// The output is a JSON Schema (draft 2020-12) and a flat per-path field
// table, both of which reach below the top level.
package docschema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/invopop/jsonschema"
)

// Inferred is a schema merged across a set of documents.
type Inferred struct {
	Schema        *jsonschema.Schema `json:"schema"`
	DocumentCount int                `json:"document_count"`
	Uniform       bool               `json:"uniform"` // every document produced the same schema
}

// Options controls schema inference.
type Options struct {
	// StrictRequired marks a property required when every document carries it.
	StrictRequired bool
	// AdditionalProperties, when set, is applied to every object schema.
	AdditionalProperties *bool
	// NullableOptional keeps properties that are ever null out of required.
	NullableOptional bool
}

// DefaultOptions returns the default inference options.
func DefaultOptions() *Options {
	return &Options{
		StrictRequired:   true,
		NullableOptional: true,
	}
}

// Decode reads tool output into documents. An object is one document, an
// array is its elements and null is none.
func Decode(text []byte) ([]any, error) {
	var v any
	if err := json.Unmarshal(text, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return val, nil
	case map[string]any:
		return []any{val}, nil
	default:
		return nil, fmt.Errorf("expected a document or an array of documents, got %T", v)
	}
}

// Infer builds a merged schema for docs. It returns nil when docs is empty.
func Infer(docs []any, opts *Options) *Inferred {
	if len(docs) == 0 {
		return nil
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	schemas := make([]*jsonschema.Schema, 0, len(docs))
	for _, d := range docs {
		schemas = append(schemas, schemaFor(d))
	}

	uniform := true
	if len(schemas) > 1 {
		first, _ := json.Marshal(schemas[0])
		for _, s := range schemas[1:] {
			other, _ := json.Marshal(s)
			if string(first) != string(other) {
				uniform = false
				break
			}
		}
	}

	merged := merge(schemas)
	if opts.StrictRequired && merged.Type == "object" {
		markRequired(merged, docs, opts.NullableOptional)
	}
	if opts.AdditionalProperties != nil {
		applyAdditionalProperties(merged, *opts.AdditionalProperties)
	}

	return &Inferred{
		Schema:        merged,
		DocumentCount: len(docs),
		Uniform:       uniform,
	}
}

// InferText decodes tool output and infers its schema.
func InferText(text []byte, opts *Options) (*Inferred, error) {
	docs, err := Decode(text)
	if err != nil {
		return nil, err
	}
	return Infer(docs, opts), nil
}

// wrapperSchemas maps Extended JSON type wrappers to the leaf they stand for.
var wrapperSchemas = map[string]jsonschema.Schema{
	"$oid":               {Type: "string", Format: "objectid"},
	"$date":              {Type: "string", Format: "date-time"},
	"$numberLong":        {Type: "integer", Format: "int64"},
	"$numberInt":         {Type: "integer", Format: "int32"},
	"$numberDouble":      {Type: "number", Format: "double"},
	"$numberDecimal":     {Type: "number", Format: "decimal128"},
	"$binary":            {Type: "string", Format: "binary"},
	"$uuid":              {Type: "string", Format: "uuid"},
	"$timestamp":         {Type: "integer", Format: "timestamp"},
	"$regularExpression": {Type: "string", Format: "regex"},
	"$symbol":            {Type: "string", Format: "symbol"},
	"$code":              {Type: "string", Format: "javascript"},
	"$minKey":            {Type: "string", Format: "minKey"},
	"$maxKey":            {Type: "string", Format: "maxKey"},
}

// wrapperKey returns the wrapper key of obj, if obj is an Extended JSON
// type wrapper. $code may carry $scope alongside it.
func wrapperKey(obj map[string]any) (string, bool) {
	switch len(obj) {
	case 1:
		for k := range obj {
			_, ok := wrapperSchemas[k]
			return k, ok
		}
	case 2:
		if _, ok := obj["$code"]; ok {
			if _, ok := obj["$scope"]; ok {
				return "$code", true
			}
		}
	}
	return "", false
}

func schemaFor(v any) *jsonschema.Schema {
	switch val := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "null"}
	case bool:
		return &jsonschema.Schema{Type: "boolean"}
	case float64:
		if math.Trunc(val) == val && !math.IsInf(val, 0) && !math.IsNaN(val) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}
	case string:
		return &jsonschema.Schema{Type: "string"}
	case []any:
		return arraySchema(val)
	case map[string]any:
		if k, ok := wrapperKey(val); ok {
			leaf := wrapperSchemas[k]
			return &leaf
		}
		return objectSchema(val)
	default:
		return &jsonschema.Schema{}
	}
}

func arraySchema(arr []any) *jsonschema.Schema {
	schema := &jsonschema.Schema{Type: "array"}
	if len(arr) == 0 {
		return schema
	}

	items := make([]*jsonschema.Schema, 0, len(arr))
	for _, item := range arr {
		items = append(items, schemaFor(item))
	}
	schema.Items = merge(items)
	return schema
}

func objectSchema(obj map[string]any) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		schema.Properties.Set(k, schemaFor(obj[k]))
	}
	return schema
}

// merge combines schemas observed for the same position. Leaves of one type
// keep their format only when every observation agrees on it; mixed types
// become anyOf.
func merge(schemas []*jsonschema.Schema) *jsonschema.Schema {
	switch len(schemas) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return schemas[0]
	}

	byType := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Type == "" {
			continue
		}
		byType[s.Type] = append(byType[s.Type], s)
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	mergeType := func(t string) *jsonschema.Schema {
		switch t {
		case "object":
			return mergeObjects(byType[t])
		case "array":
			return mergeArrays(byType[t])
		default:
			return mergeLeaves(byType[t])
		}
	}

	if len(types) == 1 {
		return mergeType(types[0])
	}
	if len(types) == 0 {
		return &jsonschema.Schema{}
	}

	// Containers first, then leaves in name order.
	anyOf := make([]*jsonschema.Schema, 0, len(types))
	for _, t := range []string{"object", "array"} {
		if _, ok := byType[t]; ok {
			anyOf = append(anyOf, mergeType(t))
		}
	}
	for _, t := range types {
		if t != "object" && t != "array" {
			anyOf = append(anyOf, mergeType(t))
		}
	}
	return &jsonschema.Schema{AnyOf: anyOf}
}

func mergeLeaves(schemas []*jsonschema.Schema) *jsonschema.Schema {
	out := &jsonschema.Schema{Type: schemas[0].Type, Format: schemas[0].Format}
	for _, s := range schemas[1:] {
		if s.Format != out.Format {
			out.Format = ""
			break
		}
	}
	return out
}

func mergeObjects(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}

	props := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Properties == nil {
			continue
		}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			props[pair.Key] = append(props[pair.Key], pair.Value)
		}
	}

	merged := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		merged.Properties.Set(k, merge(props[k]))
	}
	return merged
}

func mergeArrays(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}

	items := make([]*jsonschema.Schema, 0, len(schemas))
	for _, s := range schemas {
		if s.Items != nil {
			items = append(items, s.Items)
		}
	}
	out := &jsonschema.Schema{Type: "array"}
	if len(items) > 0 {
		out.Items = merge(items)
	}
	return out
}

// markRequired lists the properties every document carries. With
// nullableOptional set, a property that is ever null stays optional.
func markRequired(schema *jsonschema.Schema, docs []any, nullableOptional bool) {
	if schema.Type != "object" || schema.Properties == nil {
		return
	}

	present := make(map[string]int)
	nullable := make(map[string]bool)
	for _, d := range docs {
		obj, ok := d.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range obj {
			present[k]++
			if v == nil {
				nullable[k] = true
			}
		}
	}

	var required []string
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		k := pair.Key
		if present[k] != len(docs) {
			continue
		}
		if nullableOptional && nullable[k] {
			continue
		}
		required = append(required, k)
	}
	sort.Strings(required)
	if len(required) > 0 {
		schema.Required = required
	}

	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		switch {
		case prop.Type == "object":
			if nested := fieldValues(pair.Key, docs); len(nested) > 0 {
				markRequired(prop, nested, nullableOptional)
			}
		case prop.Type == "array" && prop.Items != nil && prop.Items.Type == "object":
			if items := arrayItems(pair.Key, docs); len(items) > 0 {
				markRequired(prop.Items, items, nullableOptional)
			}
		}
	}
}

func applyAdditionalProperties(schema *jsonschema.Schema, allowed bool) {
	if schema == nil {
		return
	}

	if schema.Type == "object" {
		if allowed {
			schema.AdditionalProperties = jsonschema.TrueSchema
		} else {
			schema.AdditionalProperties = jsonschema.FalseSchema
		}
		if schema.Properties != nil {
			for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
				applyAdditionalProperties(pair.Value, allowed)
			}
		}
	}
	if schema.Type == "array" {
		applyAdditionalProperties(schema.Items, allowed)
	}
	for _, s := range schema.AnyOf {
		applyAdditionalProperties(s, allowed)
	}
}

// fieldValues returns the non-null values of field across docs.
func fieldValues(field string, docs []any) []any {
	var out []any
	for _, d := range docs {
		obj, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := obj[field]; ok && v != nil {
			out = append(out, v)
		}
	}
	return out
}

// arrayItems returns the non-null elements of array field across docs.
func arrayItems(field string, docs []any) []any {
	var out []any
	for _, d := range docs {
		obj, ok := d.(map[string]any)
		if !ok {
			continue
		}
		arr, ok := obj[field].([]any)
		if !ok {
			continue
		}
		for _, item := range arr {
			if item != nil {
				out = append(out, item)
			}
		}
	}
	return out
}
