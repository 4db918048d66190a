package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const products = `[
  {"color": "#000", "category": "shoes", "price": 40},
  {"color": "#000", "category": "bags", "price": 90},
  {"color": "#fff", "category": "shoes", "price": 15}
]`

func TestFilter_Run(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		deduplicate bool
		max         int
		want        []any
		rawCount    int
	}{
		{"object key on array", `.category`, false, 0, nil, 0},
		{"iterate", `.[].category`, false, 0, []any{"shoes", "bags", "shoes"}, 3},
		{"deduplicate", `.[].category`, true, 0, []any{"shoes", "bags"}, 3},
		{"max results", `.[].price`, false, 2, []any{float64(40), float64(90)}, 2},
		{"select", `.[] | select(.price > 20) | .category`, false, 0, []any{"shoes", "bags"}, 2},
		{"length", `length`, false, 0, []any{3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, f.String())

			res, err := f.Run([]byte(products), tt.deduplicate, tt.max)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, res.Values)
				assert.NotEmpty(t, res.Errors)
				return
			}
			assert.Equal(t, tt.want, res.Values)
			assert.Equal(t, tt.rawCount, res.RawCount)
		})
	}
}

func TestFilter_RunSkipsNull(t *testing.T) {
	f, err := Compile(`.[].stock`)
	require.NoError(t, err)

	res, err := f.Run([]byte(products), false, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Values)
	assert.Empty(t, res.Errors)
}

func TestFilter_RunErrorHints(t *testing.T) {
	f, err := Compile(`.category`)
	require.NoError(t, err)

	res, err := f.Run([]byte(products), false, 0)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "try adding '[]'")

	f, err = Compile(`.[0]`)
	require.NoError(t, err)
	res, err = f.Run([]byte(`{"category": "shoes"}`), false, 0)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "try removing '[]'")

	f, err = Compile(`.tags[]`)
	require.NoError(t, err)
	res, err = f.Run([]byte(`{"category": "shoes"}`), false, 0)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "may be missing")
}

func TestFilter_RunHalt(t *testing.T) {
	f, err := Compile(`.[0].category, halt, .[1].category`)
	require.NoError(t, err)

	res, err := f.Run([]byte(products), false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"shoes"}, res.Values)
	assert.Empty(t, res.Errors)
}

func TestFilter_RunInvalidJSON(t *testing.T) {
	f, err := Compile(`.`)
	require.NoError(t, err)

	_, err = f.Run([]byte(`{not json`), false, 0)
	assert.ErrorContains(t, err, "invalid JSON data")
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(".name[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")

	_, err = Compile("undefined_function_xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile jq expression")
}
