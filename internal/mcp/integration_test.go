//go:build integration

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tanjirantu/mcp-mongodb/internal/config"
	"github.com/tanjirantu/mcp-mongodb/internal/database"
	"github.com/tanjirantu/mcp-mongodb/internal/mcp/tools"
	"github.com/tanjirantu/mcp-mongodb/internal/schema"
)

const integrationDB = "mcp_it"

// startMongo runs a throwaway mongod and returns its connection string for
// integrationDB.
func startMongo(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Waiting for connections"),
				wait.ForListeningPort("27017/tcp"),
			).WithStartupTimeoutDefault(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("mongodb://%s:%s/%s", host, port.Port(), integrationDB)
}

func insertProducts(t *testing.T, uri string, docs ...any) {
	t.Helper()
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	_, err = client.Database(integrationDB).Collection("products").InsertMany(ctx, docs)
	require.NoError(t, err)
}

func TestIntegration_Mongo(t *testing.T) {
	uri := startMongo(t)
	insertProducts(t, uri,
		bson.D{{Key: "color", Value: "#000"}, {Key: "category", Value: "shoes"}, {Key: "price", Value: 10.5}},
		bson.D{{Key: "color", Value: "#fff"}, {Key: "category", Value: "hats"}, {Key: "price", Value: "n/a"}},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := database.ParseConnString(uri)
	require.NoError(t, err)
	h := database.NewHandle(info)
	require.NoError(t, h.Connect(ctx, uri, 10*time.Second))
	t.Cleanup(func() { _ = h.Close(context.Background()) })

	cfg := &config.Config{SchemaSample: schema.DefaultSampleSize, ListConcurrency: 2}
	s, err := NewServer(tools.NewDeps(h, cfg), WithBuiltinTools(), WithBuiltinPrompts())
	require.NoError(t, err)
	cs := connect(t, s)

	t.Run("list resources", func(t *testing.T) {
		res, err := cs.ListResources(ctx, nil)
		require.NoError(t, err)
		require.Len(t, res.Resources, 1)
		assert.Equal(t, info.SchemaURI("products"), res.Resources[0].URI)
	})

	t.Run("aggregate", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
			Name: "aggregate",
			Arguments: map[string]any{
				"collection": "products",
				"pipeline": []any{
					map[string]any{"$match": map[string]any{"color": "#000"}},
					map[string]any{"$group": map[string]any{"_id": "$category", "count": map[string]any{"$sum": 1}}},
				},
			},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &got))
		assert.Equal(t, []map[string]any{{"_id": "shoes", "count": float64(1)}}, got)
	})

	t.Run("find round trip", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
			Name: "findOne",
			Arguments: map[string]any{
				"collection": "products",
				"query":      map[string]any{"category": "shoes"},
				"options":    map[string]any{"projection": map[string]any{"_id": 0}},
			},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &got))
		assert.Equal(t, map[string]any{"color": "#000", "category": "shoes", "price": 10.5}, got)
	})

	t.Run("schema reports mixed types", func(t *testing.T) {
		res, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: info.SchemaURI("products")})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)

		var entries []schema.Entry
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &entries))
		byField := make(map[string]schema.Entry, len(entries))
		for _, e := range entries {
			byField[e.Field] = e
		}
		assert.ElementsMatch(t, []string{"double", "string"}, byField["price"].Types)
		assert.Equal(t, 2, byField["price"].Count)
		assert.Equal(t, []string{"string"}, byField["color"].Types)
	})
}
