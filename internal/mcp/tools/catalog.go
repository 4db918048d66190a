package tools

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name identifies one of the fixed query tools.
type Name int

const (
	Find Name = iota + 1
	FindOne
	Aggregate
)

var toolNames = map[Name]string{
	Find:      "find",
	FindOne:   "findOne",
	Aggregate: "aggregate",
}

// Names lists every tool in catalog order.
func Names() []Name {
	return []Name{Find, FindOne, Aggregate}
}

func (n Name) String() string {
	if s, ok := toolNames[n]; ok {
		return s
	}
	return fmt.Sprintf("Name(%d)", int(n))
}

// ParseName resolves a wire tool name.
func ParseName(s string) (Name, error) {
	for _, n := range Names() {
		if toolNames[n] == s {
			return n, nil
		}
	}
	return 0, ErrInvalidInputf("unknown tool: %s", s)
}

// Description returns the catalog description for the tool.
func (n Name) Description() string {
	switch n {
	case Find:
		return "Run a find query against a collection. Returns every matching document as a JSON array. query is a filter document in MongoDB Extended JSON; options are driver find options (limit, skip, sort, projection, collation, hint, maxTimeMS, ...) passed through as Extended JSON."
	case FindOne:
		return "Run a find one query against a collection. Returns the first matching document, or null when nothing matches. Accepts the same query and options as find (limit and batchSize are ignored)."
	case Aggregate:
		return "Run an aggregation pipeline against a collection. pipeline is an array of stage documents passed to the server verbatim; options are driver aggregate options (allowDiskUse, collation, hint, let, maxTimeMS, ...) passed through as Extended JSON."
	default:
		return ""
	}
}

// InputSchema returns the declared argument shape for the tool.
func (n Name) InputSchema() *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"collection": {Type: "string", Description: "Name of the collection to query"},
	}

	switch n {
	case Find, FindOne:
		props["query"] = &jsonschema.Schema{Type: "object", Description: "Filter document (MongoDB Extended JSON). Defaults to {}"}
		props["options"] = &jsonschema.Schema{Type: "object", Description: "Find options passed to the driver: limit, skip, sort, projection, collation, hint, comment, let, min, max, maxTimeMS, batchSize, ..."}
	case Aggregate:
		props["pipeline"] = &jsonschema.Schema{
			Type:        "array",
			Description: "Aggregation pipeline stages (MongoDB Extended JSON). Defaults to []",
			Items:       &jsonschema.Schema{Type: "object"},
		}
		props["options"] = &jsonschema.Schema{Type: "object", Description: "Aggregate options passed to the driver: allowDiskUse, collation, hint, comment, let, bypassDocumentValidation, maxTimeMS, batchSize"}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"collection"},
	}
}

// Catalog returns the tool definitions advertised by tools/list.
func Catalog() []*sdkmcp.Tool {
	out := make([]*sdkmcp.Tool, 0, len(toolNames))
	for _, n := range Names() {
		out = append(out, &sdkmcp.Tool{
			Name:        n.String(),
			Description: n.Description(),
			InputSchema: n.InputSchema(),
			// $out and $merge stages write, so only the find tools are read-only.
			Annotations: &sdkmcp.ToolAnnotations{
				ReadOnlyHint: n != Aggregate,
			},
		})
	}
	return out
}
