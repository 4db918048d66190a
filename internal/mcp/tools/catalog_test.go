package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanjirantu/mcp-mongodb/internal/database"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 3)

	names := make([]string, 0, len(catalog))
	for _, tool := range catalog {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)

		raw, err := json.Marshal(tool.InputSchema)
		require.NoError(t, err)
		var s jsonschema.Schema
		require.NoError(t, json.Unmarshal(raw, &s))
		assert.Equal(t, "object", s.Type)
		assert.Equal(t, []string{"collection"}, s.Required)
		assert.Equal(t, "string", s.Properties["collection"].Type)
		assert.Equal(t, "object", s.Properties["options"].Type)
	}
	assert.Equal(t, []string{"find", "findOne", "aggregate"}, names)

	assert.Equal(t, "object", Find.InputSchema().Properties["query"].Type)
	assert.Equal(t, "array", Aggregate.InputSchema().Properties["pipeline"].Type)
	assert.NotContains(t, Aggregate.InputSchema().Properties, "query")

	assert.True(t, catalog[0].Annotations.ReadOnlyHint)
	assert.False(t, catalog[2].Annotations.ReadOnlyHint)
}

func TestParseName(t *testing.T) {
	for _, n := range Names() {
		got, err := ParseName(n.String())
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	_, err := ParseName("FIND")
	assert.True(t, IsCode(err, ErrCodeInvalidInput))
	assert.Equal(t, "Name(0)", Name(0).String())
}

func TestWrapDatabaseError(t *testing.T) {
	assert.NoError(t, WrapDatabaseError(nil))

	tests := []struct {
		name string
		err  error
		code string
		msg  string
	}{
		{"not initialized", database.ErrNotInitialized, ErrCodeNotInitialized, "database connection not initialized"},
		{"collection not found", fmt.Errorf("read: %w", &database.CollectionNotFoundError{Name: "users"}), ErrCodeNotFound, "collection not found: users"},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout, "request timed out"},
		{"upstream", errors.New("(BadValue) unknown top level operator: $foo"), ErrCodeDatabaseError, "(BadValue) unknown top level operator: $foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapDatabaseError(tt.err)
			var coded *CodedError
			require.True(t, errors.As(err, &coded))
			assert.Equal(t, tt.code, coded.Code)
			assert.Contains(t, coded.Message, tt.msg)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	already := ErrInvalidInput("bad")
	assert.Same(t, already, WrapDatabaseError(already))
}
