package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.mongodb.org/mongo-driver/bson"
)

// AddTool registers a typed tool and checks at registration time that the
// zero value of Out satisfies the schema the SDK infers for it.
//
// Panics if the check fails.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema validates the zero value of T against the JSON schema the
// SDK would infer from it.
//
// Two mistakes are caught. Nil slices marshal as null where the inferred
// schema says "array". Raw document fields (json.RawMessage, bson.Raw) are
// inferred as byte arrays but marshal as something else entirely.
//
// The untyped "any" output is skipped, as are types the schema generator
// cannot handle; the SDK reports those itself.
func CheckOutputSchema[T any](toolName string) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	elem := rt
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	if paths := findRawDocumentFields(elem, nil, make(map[reflect.Type]bool)); len(paths) > 0 {
		panic(fmt.Sprintf(
			"AddTool %q: output type %s carries a raw document at %s\n"+
				"  raw documents are inferred as byte arrays but do not marshal as one\n"+
				"  Fix: decode into bson.M or map[string]any before returning",
			toolName, elem, strings.Join(paths, ", "),
		))
	}

	schema, err := jsonschema.ForType(elem, &jsonschema.ForOptions{})
	if err != nil {
		return
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return
	}

	data, err := json.Marshal(reflect.Zero(elem).Interface())
	if err != nil {
		return
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}

	if err := resolved.Validate(&v); err != nil {
		panic(fmt.Sprintf(
			"AddTool %q: zero value of output type %s fails schema validation: %v\n"+
				"  JSON: %s\n"+
				"  Fix: add `omitzero` to slice fields, or initialize them to empty slices",
			toolName, elem, err, data,
		))
	}
}

var rawDocumentTypes = map[reflect.Type]bool{
	reflect.TypeFor[json.RawMessage](): true,
	reflect.TypeFor[bson.Raw]():        true,
}

// findRawDocumentFields walks t and returns the paths of raw document fields.
func findRawDocumentFields(t reflect.Type, path []string, visited map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if rawDocumentTypes[t] {
		return []string{strings.Join(path, ".")}
	}

	// recursive types
	if visited[t] {
		return nil
	}
	visited[t] = true
	defer delete(visited, t)

	var found []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			found = append(found, findRawDocumentFields(f.Type, append(path, f.Name), visited)...)
		}
	case reflect.Slice, reflect.Array:
		found = append(found, findRawDocumentFields(t.Elem(), append(path, "[]"), visited)...)
	case reflect.Map:
		found = append(found, findRawDocumentFields(t.Elem(), append(path, "[value]"), visited)...)
	}
	return found
}
