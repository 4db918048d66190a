package tools

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tanjirantu/mcp-mongodb/internal/database"
)

// Invocation is one validated tool call. It lives only for the request.
type Invocation struct {
	Tool       Name
	Collection string
	Query      bson.D   // find, findOne; empty when omitted
	Pipeline   []bson.D // aggregate; empty when omitted
	FindOpts   *database.FindOptions
	AggOpts    *database.AggregateOptions
}

var resolvedSchemas = func() map[Name]*jsonschema.Resolved {
	out := make(map[Name]*jsonschema.Resolved, len(toolNames))
	for _, n := range Names() {
		rs, err := n.InputSchema().Resolve(&jsonschema.ResolveOptions{})
		if err != nil {
			panic("tools: resolving input schema for " + n.String() + ": " + err.Error())
		}
		out[n] = rs
	}
	return out
}()

// ParseInvocation validates raw tool arguments and decodes them. Query and
// pipeline documents are read as relaxed MongoDB Extended JSON.
func ParseInvocation(tool string, raw json.RawMessage) (*Invocation, error) {
	// Validate
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrInvalidInput("invalid arguments format: expected an object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, ErrInvalidInputf("invalid arguments format: %v", err)
	}

	var collection string
	if c, ok := fields["collection"]; ok {
		if err := json.Unmarshal(c, &collection); err != nil {
			return nil, ErrInvalidInput("collection must be a string")
		}
	}
	if collection == "" {
		return nil, ErrInvalidInput("collection name is required")
	}

	// Route
	name, err := ParseName(tool)
	if err != nil {
		return nil, err
	}

	var instance map[string]any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, ErrInvalidInputf("invalid arguments format: %v", err)
	}
	// An explicit null means the same as an omitted argument.
	for k, v := range instance {
		if v == nil {
			delete(instance, k)
		}
	}
	if err := resolvedSchemas[name].Validate(instance); err != nil {
		return nil, ErrInvalidInputf("invalid arguments for %s: %v", name, err)
	}

	inv := &Invocation{Tool: name, Collection: collection}

	switch name {
	case Find, FindOne:
		if inv.Query, err = decodeDocument("query", fields["query"]); err != nil {
			return nil, err
		}
		if inv.FindOpts, err = decodeFindOptions(name, fields["options"]); err != nil {
			return nil, err
		}
	case Aggregate:
		if inv.Pipeline, err = decodePipeline(fields["pipeline"]); err != nil {
			return nil, err
		}
		if inv.AggOpts, err = decodeAggregateOptions(fields["options"]); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidInputf("unknown tool: %s", tool)
	}

	return inv, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func decodeDocument(field string, raw json.RawMessage) (bson.D, error) {
	doc := bson.D{}
	if isAbsent(raw) {
		return doc, nil
	}
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, ErrInvalidInputf("%s is not a valid document: %v", field, err)
	}
	return doc, nil
}

func decodePipeline(raw json.RawMessage) ([]bson.D, error) {
	pipeline := []bson.D{}
	if isAbsent(raw) {
		return pipeline, nil
	}
	var stages []json.RawMessage
	if err := json.Unmarshal(raw, &stages); err != nil {
		return nil, ErrInvalidInputf("pipeline must be an array of stage documents: %v", err)
	}
	for i, s := range stages {
		stage, err := decodeDocument("pipeline stage", s)
		if err != nil {
			return nil, ErrInvalidInputf("pipeline[%d]: %v", i, err)
		}
		pipeline = append(pipeline, stage)
	}
	return pipeline, nil
}

// decodeOptions reads an options document as Extended JSON. Option values
// are checked for their type only; their meaning is left to the server.
func decodeOptions(raw json.RawMessage) (bson.D, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	return decodeDocument("options", raw)
}

func decodeFindOptions(name Name, raw json.RawMessage) (*database.FindOptions, error) {
	doc, err := decodeOptions(raw)
	if err != nil {
		return nil, err
	}

	opts := &database.FindOptions{}
	for _, e := range doc {
		var err error
		switch e.Key {
		case "allowDiskUse":
			opts.AllowDiskUse, err = optBool(e)
		case "allowPartialResults":
			opts.AllowPartialResults, err = optBool(e)
		case "batchSize":
			opts.BatchSize, err = optInt32(e)
		case "collation":
			opts.Collation, err = optCollation(e)
		case "comment":
			opts.Comment, err = optString(e)
		case "cursorType":
			opts.CursorType, err = optCursorType(e)
		case "hint":
			opts.Hint, err = optHint(e)
		case "let":
			opts.Let, err = optDocument(e)
		case "limit":
			opts.Limit, err = optInt64(e)
		case "max":
			opts.Max, err = optDocument(e)
		case "maxAwaitTimeMS":
			opts.MaxAwaitTime, err = optMillis(e)
		case "maxTimeMS":
			opts.MaxTime, err = optMillis(e)
		case "min":
			opts.Min, err = optDocument(e)
		case "noCursorTimeout":
			opts.NoCursorTimeout, err = optBool(e)
		case "projection":
			opts.Projection, err = optDocument(e)
		case "returnKey":
			opts.ReturnKey, err = optBool(e)
		case "showRecordId":
			opts.ShowRecordID, err = optBool(e)
		case "skip":
			opts.Skip, err = optInt64(e)
		case "sort":
			opts.Sort, err = optDocument(e)
		default:
			err = ErrInvalidInputf("unsupported option %q for %s", e.Key, name)
		}
		if err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func decodeAggregateOptions(raw json.RawMessage) (*database.AggregateOptions, error) {
	doc, err := decodeOptions(raw)
	if err != nil {
		return nil, err
	}

	opts := &database.AggregateOptions{}
	for _, e := range doc {
		var err error
		switch e.Key {
		case "allowDiskUse":
			opts.AllowDiskUse, err = optBool(e)
		case "batchSize":
			opts.BatchSize, err = optInt32(e)
		case "bypassDocumentValidation":
			opts.BypassDocumentValidation, err = optBool(e)
		case "collation":
			opts.Collation, err = optCollation(e)
		case "comment":
			opts.Comment, err = optString(e)
		case "custom":
			var custom bson.D
			if custom, err = optDocument(e); err == nil {
				opts.Custom = make(bson.M, len(custom))
				for _, c := range custom {
					opts.Custom[c.Key] = c.Value
				}
			}
		case "hint":
			opts.Hint, err = optHint(e)
		case "let":
			opts.Let, err = optDocument(e)
		case "maxAwaitTimeMS":
			opts.MaxAwaitTime, err = optMillis(e)
		case "maxTimeMS":
			opts.MaxTime, err = optMillis(e)
		default:
			err = ErrInvalidInputf("unsupported option %q for %s", e.Key, Aggregate)
		}
		if err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func optBool(e bson.E) (*bool, error) {
	b, ok := e.Value.(bool)
	if !ok {
		return nil, ErrInvalidInputf("%s must be a boolean", e.Key)
	}
	return &b, nil
}

func optString(e bson.E) (*string, error) {
	s, ok := e.Value.(string)
	if !ok {
		return nil, ErrInvalidInputf("%s must be a string", e.Key)
	}
	return &s, nil
}

func optDocument(e bson.E) (bson.D, error) {
	d, ok := e.Value.(bson.D)
	if !ok {
		return nil, ErrInvalidInputf("%s must be a document", e.Key)
	}
	return d, nil
}

// optInt64 accepts any integral number, including 10.0 and {"$numberLong": "10"}.
func optInt64(e bson.E) (*int64, error) {
	var n int64
	switch v := e.Value.(type) {
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, ErrInvalidInputf("%s must be an integer", e.Key)
		}
		n = int64(v)
	default:
		return nil, ErrInvalidInputf("%s must be an integer", e.Key)
	}
	return &n, nil
}

func optInt32(e bson.E) (*int32, error) {
	n, err := optInt64(e)
	if err != nil {
		return nil, err
	}
	if *n < math.MinInt32 || *n > math.MaxInt32 {
		return nil, ErrInvalidInputf("%s must be a 32-bit integer", e.Key)
	}
	v := int32(*n)
	return &v, nil
}

func optMillis(e bson.E) (*time.Duration, error) {
	n, err := optInt64(e)
	if err != nil {
		return nil, err
	}
	d := time.Duration(*n) * time.Millisecond
	return &d, nil
}

// optHint accepts an index name or an index key document.
func optHint(e bson.E) (any, error) {
	switch v := e.Value.(type) {
	case string, bson.D:
		return v, nil
	default:
		return nil, ErrInvalidInput("hint must be an index name or a key document")
	}
}

var cursorTypes = map[string]options.CursorType{
	"nonTailable":   options.NonTailable,
	"tailable":      options.Tailable,
	"tailableAwait": options.TailableAwait,
}

func optCursorType(e bson.E) (*options.CursorType, error) {
	s, _ := e.Value.(string)
	ct, ok := cursorTypes[s]
	if !ok {
		return nil, ErrInvalidInput("cursorType must be one of nonTailable, tailable, tailableAwait")
	}
	return &ct, nil
}

// optCollation maps a collation document onto the driver's fields.
func optCollation(e bson.E) (*options.Collation, error) {
	doc, err := optDocument(e)
	if err != nil {
		return nil, err
	}

	c := &options.Collation{}
	for _, f := range doc {
		field := bson.E{Key: "collation." + f.Key, Value: f.Value}
		var (
			s   *string
			b   *bool
			n   *int64
			err error
		)
		switch f.Key {
		case "locale", "caseFirst", "alternate", "maxVariable":
			s, err = optString(field)
		case "caseLevel", "numericOrdering", "normalization", "backwards":
			b, err = optBool(field)
		case "strength":
			n, err = optInt64(field)
		default:
			err = ErrInvalidInputf("unsupported collation field %q", f.Key)
		}
		if err != nil {
			return nil, err
		}

		switch f.Key {
		case "locale":
			c.Locale = *s
		case "caseFirst":
			c.CaseFirst = *s
		case "alternate":
			c.Alternate = *s
		case "maxVariable":
			c.MaxVariable = *s
		case "caseLevel":
			c.CaseLevel = *b
		case "numericOrdering":
			c.NumericOrdering = *b
		case "normalization":
			c.Normalization = *b
		case "backwards":
			c.Backwards = *b
		case "strength":
			c.Strength = int(*n)
		}
	}
	return c, nil
}
