package docschema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inferText(t *testing.T, text string) *Inferred {
	t.Helper()
	inferred, err := InferText([]byte(text), nil)
	require.NoError(t, err)
	require.NotNil(t, inferred)
	return inferred
}

func prop(t *testing.T, inferred *Inferred, name string) map[string]any {
	t.Helper()
	s, ok := inferred.Schema.Properties.Get(name)
	require.True(t, ok, "no property %q", name)
	b, err := json.Marshal(s)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestDecode(t *testing.T) {
	docs, err := Decode([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = Decode([]byte(`{"a": 1}`))
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = Decode([]byte(`[{"a": 1}, {"a": 2}]`))
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = Decode([]byte(`"text"`))
	assert.Error(t, err)
	_, err = Decode([]byte(`{`))
	assert.Error(t, err)
}

func TestInfer_Empty(t *testing.T) {
	inferred, err := InferText([]byte(`[]`), nil)
	require.NoError(t, err)
	assert.Nil(t, inferred)
}

func TestInfer_ExtendedJSONLeaves(t *testing.T) {
	inferred := inferText(t, `{
		"_id": {"$oid": "64b7f0c2a1b2c3d4e5f60718"},
		"created": {"$date": "2024-01-02T03:04:05Z"},
		"views": {"$numberLong": "9007199254740993"},
		"price": {"$numberDecimal": "9.99"},
		"name": "boots"
	}`)

	assert.Equal(t, "object", inferred.Schema.Type)
	assert.Equal(t, map[string]any{"type": "string", "format": "objectid"}, prop(t, inferred, "_id"))
	assert.Equal(t, map[string]any{"type": "string", "format": "date-time"}, prop(t, inferred, "created"))
	assert.Equal(t, map[string]any{"type": "integer", "format": "int64"}, prop(t, inferred, "views"))
	assert.Equal(t, map[string]any{"type": "number", "format": "decimal128"}, prop(t, inferred, "price"))
	assert.Equal(t, []string{"_id", "created", "name", "price", "views"}, inferred.Schema.Required)
}

func TestInfer_NestedAndRequired(t *testing.T) {
	inferred := inferText(t, `[
		{"sku": "a", "dims": {"w": 1, "h": 2}, "tags": ["x"], "lines": [{"qty": 1, "note": "gift"}]},
		{"sku": "b", "dims": {"w": 3}, "tags": [], "lines": [{"qty": 2}]},
		{"sku": "c", "dims": {"w": 5, "h": null}, "lines": []}
	]`)

	assert.Equal(t, 3, inferred.DocumentCount)
	assert.False(t, inferred.Uniform)
	assert.Equal(t, []string{"dims", "lines", "sku"}, inferred.Schema.Required)

	dims, _ := inferred.Schema.Properties.Get("dims")
	assert.Equal(t, []string{"w"}, dims.Required)

	lines, _ := inferred.Schema.Properties.Get("lines")
	require.NotNil(t, lines.Items)
	assert.Equal(t, []string{"qty"}, lines.Items.Required)

	tags, _ := inferred.Schema.Properties.Get("tags")
	assert.Equal(t, "array", tags.Type)
	require.NotNil(t, tags.Items)
	assert.Equal(t, "string", tags.Items.Type)
}

func TestInfer_MixedTypes(t *testing.T) {
	inferred := inferText(t, `[
		{"price": 10, "code": {"$oid": "64b7f0c2a1b2c3d4e5f60718"}},
		{"price": "n/a", "code": "legacy"},
		{"price": {"amount": 3}}
	]`)

	price := prop(t, inferred, "price")
	assert.Equal(t, []any{
		map[string]any{"type": "object", "properties": map[string]any{"amount": map[string]any{"type": "integer"}}},
		map[string]any{"type": "integer"},
		map[string]any{"type": "string"},
	}, price["anyOf"])

	// One type with disagreeing formats keeps the type only.
	assert.Equal(t, map[string]any{"type": "string"}, prop(t, inferred, "code"))
}

func TestInfer_Uniform(t *testing.T) {
	inferred := inferText(t, `[{"a": 1, "b": "x"}, {"a": 2, "b": "y"}]`)
	assert.True(t, inferred.Uniform)
}

func TestInfer_AdditionalProperties(t *testing.T) {
	closed := false
	inferred, err := InferText([]byte(`{"a": {"b": 1}, "c": [{"d": true}]}`), &Options{AdditionalProperties: &closed})
	require.NoError(t, err)

	b, err := json.Marshal(inferred.Schema)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	assert.Equal(t, false, out["additionalProperties"])
	props := out["properties"].(map[string]any)
	assert.Equal(t, false, props["a"].(map[string]any)["additionalProperties"])
	items := props["c"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, false, items["additionalProperties"])
	assert.Nil(t, out["required"], "StrictRequired is off")
}
