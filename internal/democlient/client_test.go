package democlient

import (
	"bytes"
	"context"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tanjirantu/mcp-mongodb/internal/config"
	"github.com/tanjirantu/mcp-mongodb/internal/database"
	"github.com/tanjirantu/mcp-mongodb/internal/database/databasetest"
	"github.com/tanjirantu/mcp-mongodb/internal/mcp"
	"github.com/tanjirantu/mcp-mongodb/internal/mcp/tools"
	"github.com/tanjirantu/mcp-mongodb/internal/query"
)

func startServer(t *testing.T, fake *databasetest.Fake) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	info, err := database.ParseConnString("mongodb://localhost:27017/" + fake.DBName)
	require.NoError(t, err)
	deps := tools.NewDeps(database.Attach(info, fake), &config.Config{SchemaSample: 100, ListConcurrency: 4})
	srv, err := mcp.NewServer(deps, mcp.WithBuiltinTools())
	require.NoError(t, err)

	ct, st := sdkmcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	cs, err := Connect(ctx, ct)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func seedProducts(fake *databasetest.Fake) {
	fake.Insert("products",
		bson.D{{Key: "color", Value: "#000"}, {Key: "category", Value: "shoes"}},
		bson.D{{Key: "color", Value: "#fff"}, {Key: "category", Value: "hats"}},
	)
	fake.AggregateFunc = func(collection string, pipeline []bson.D) ([]bson.Raw, error) {
		if pipeline[0][0].Key == "$sample" {
			return []bson.Raw{mustMarshal(bson.D{{Key: "color", Value: "#000"}, {Key: "category", Value: "shoes"}})}, nil
		}
		return []bson.Raw{
			mustMarshal(bson.D{{Key: "_id", Value: "shoes"}, {Key: "count", Value: int32(1)}}),
			mustMarshal(bson.D{{Key: "_id", Value: "hats"}, {Key: "count", Value: int32(1)}}),
		}, nil
	}
}

func mustMarshal(d bson.D) bson.Raw {
	b, err := bson.Marshal(d)
	if err != nil {
		panic(err)
	}
	return b
}

func TestRun(t *testing.T) {
	fake := databasetest.New("mcp_db")
	seedProducts(fake)
	cs := startServer(t, fake)

	var out bytes.Buffer
	err := Run(context.Background(), cs, Options{Out: &out})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Resources (1)")
	assert.Contains(t, text, "mongodb://localhost:27017/mcp_db/products/schema")
	assert.Contains(t, text, "Schema of products")
	assert.Contains(t, text, "find: color #000, limit 10")
	assert.Contains(t, text, `"category": "shoes"`)
	assert.Contains(t, text, `"_id": "hats"`)

	assert.Equal(t, 1, fake.Calls("Find"))
	assert.Equal(t, 2, fake.Calls("Aggregate"), "one schema sample and one pipeline")
}

func TestRun_Filter(t *testing.T) {
	fake := databasetest.New("mcp_db")
	seedProducts(fake)
	cs := startServer(t, fake)

	f, err := query.Compile(`.. | .category? // empty`)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cs, Options{Filter: f, Out: &out}))
	assert.Contains(t, out.String(), `"shoes"`)
	assert.NotContains(t, out.String(), `"color"`)
}

func TestRun_MissingCollection(t *testing.T) {
	fake := databasetest.New("mcp_db")
	seedProducts(fake)
	cs := startServer(t, fake)

	var out bytes.Buffer
	err := Run(context.Background(), cs, Options{Collection: "missing_coll", Out: &out})
	require.NoError(t, err, "queries on a missing collection are not errors")

	text := out.String()
	assert.Contains(t, text, "[]")
	assert.Contains(t, text, "null")
}

func TestRun_Describe(t *testing.T) {
	fake := databasetest.New("mcp_db")
	seedProducts(fake)
	cs := startServer(t, fake)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cs, Options{Describe: true, Out: &out}))

	text := out.String()
	assert.Contains(t, text, "Path")
	assert.Contains(t, text, "Present")
	assert.Contains(t, text, "100%")
	assert.Contains(t, text, "category")
}

func TestDemoCalls(t *testing.T) {
	calls := demoCalls("products")
	require.Len(t, calls, 3)

	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.name)
		assert.Equal(t, "products", c.args["collection"])
	}
	assert.Equal(t, []string{"find", "findOne", "aggregate"}, names)

	colorBlack := map[string]any{"color": "#000"}
	assert.Equal(t, colorBlack, calls[0].args["query"])
	assert.Equal(t, colorBlack, calls[1].args["query"], "findOne uses the find filter")
}

func TestRun_FindOneFilter(t *testing.T) {
	fake := databasetest.New("mcp_db")
	fake.Insert("products",
		bson.D{{Key: "color", Value: "#fff"}, {Key: "category", Value: "hats"}},
		bson.D{{Key: "color", Value: "#000"}, {Key: "category", Value: "shoes"}},
	)
	fake.AggregateFunc = func(string, []bson.D) ([]bson.Raw, error) { return nil, nil }
	cs := startServer(t, fake)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cs, Options{Out: &out}))

	text := out.String()
	i := strings.Index(text, "findOne: color #000")
	require.GreaterOrEqual(t, i, 0)
	j := strings.Index(text[i:], "aggregate")
	require.Greater(t, j, 0)
	section := text[i : i+j]
	assert.Contains(t, section, `"shoes"`)
	assert.NotContains(t, section, `"hats"`)
}
