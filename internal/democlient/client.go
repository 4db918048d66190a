// Package democlient drives a MongoDB MCP server end to end: it lists the
// schema resources, reads one, and runs each query tool once.
package democlient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tanjirantu/mcp-mongodb/internal/docschema"
	"github.com/tanjirantu/mcp-mongodb/internal/query"
)

// Implementation name and version the demo reports to the server.
const (
	ClientName    = "mongodb-mcp-client"
	ClientVersion = "1.0.0"
)

// DefaultCollection is the collection the demo queries.
const DefaultCollection = "products"

// Options configure a demo run.
type Options struct {
	Collection string        // collection the tools run against
	Filter     *query.Filter // optional jq filter applied to tool output
	Describe   bool          // print the nested field table of each tool output
	Limits     Limits        // output trimming; zero prints everything
	Out        io.Writer
}

// Connect opens a client session over t.
func Connect(ctx context.Context, t sdkmcp.Transport) (*sdkmcp.ClientSession, error) {
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: ClientName, Version: ClientVersion}, nil)
	cs, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to server: %w", err)
	}
	return cs, nil
}

// Run performs the demo against an open session. Tool failures are printed
// and the run continues; they are returned joined at the end.
func Run(ctx context.Context, cs *sdkmcp.ClientSession, opts Options) error {
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	d := &demo{cs: cs, opts: opts}

	if err := d.resources(ctx); err != nil {
		return err
	}

	var errs []error
	for _, call := range demoCalls(opts.Collection) {
		if err := d.callTool(ctx, call); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type toolCall struct {
	title string
	name  string
	args  map[string]any
}

func demoCalls(collection string) []toolCall {
	return []toolCall{
		{
			title: "find: color #000, limit 10",
			name:  "find",
			args: map[string]any{
				"collection": collection,
				"query":      map[string]any{"color": "#000"},
				"options":    map[string]any{"limit": 10},
			},
		},
		{
			title: "findOne: color #000",
			name:  "findOne",
			args: map[string]any{
				"collection": collection,
				"query":      map[string]any{"color": "#000"},
			},
		},
		{
			title: "aggregate: count by category",
			name:  "aggregate",
			args: map[string]any{
				"collection": collection,
				"pipeline": []any{
					map[string]any{"$group": map[string]any{
						"_id":   "$category",
						"count": map[string]any{"$sum": 1},
					}},
				},
			},
		},
	}
}

type demo struct {
	cs   *sdkmcp.ClientSession
	opts Options
}

func (d *demo) printf(format string, args ...any) {
	fmt.Fprintf(d.opts.Out, format, args...)
}

func (d *demo) resources(ctx context.Context) error {
	list, err := d.cs.ListResources(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing resources: %w", err)
	}

	d.printf("%s\n", Title(fmt.Sprintf("Resources (%d)", len(list.Resources))))
	for _, r := range list.Resources {
		props, _ := r.Meta["properties"].(string)
		out, err := RenderProperties(r.Name, props)
		if err != nil {
			return err
		}
		d.printf("%s\n%s\n", mutedStyle.Render(r.URI), out)
	}

	if len(list.Resources) == 0 {
		return nil
	}

	first := list.Resources[0]
	read, err := d.cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: first.URI})
	if err != nil {
		return fmt.Errorf("reading %s: %w", first.URI, err)
	}
	d.printf("%s\n", Title("Schema of "+first.Name))
	for _, c := range read.Contents {
		out, err := RenderSchema(c.Text)
		if err != nil {
			return err
		}
		d.printf("%s\n", out)
	}
	return nil
}

func (d *demo) callTool(ctx context.Context, call toolCall) error {
	d.printf("%s\n", Title(call.title))

	res, err := d.cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: call.name, Arguments: call.args})
	if err != nil {
		d.printf("%s\n", Error(err.Error()))
		return fmt.Errorf("%s: %w", call.name, err)
	}

	text := resultText(res)
	if res.IsError {
		d.printf("%s\n", Error(text))
		return fmt.Errorf("%s: %s", call.name, text)
	}

	out, err := d.filter(text)
	if err != nil {
		d.printf("%s\n", Error(err.Error()))
		return fmt.Errorf("%s: %w", call.name, err)
	}
	d.printf("%s\n", out)

	if d.opts.Describe {
		if err := d.describe(text); err != nil {
			d.printf("%s\n", Error(err.Error()))
			return fmt.Errorf("%s: %w", call.name, err)
		}
	}
	slog.Debug("tool call completed", slog.String("tool", call.name), slog.Any("type", res.Meta["type"]))
	return nil
}

func (d *demo) describe(text string) error {
	docs, err := docschema.Decode([]byte(text))
	if err != nil {
		return fmt.Errorf("describing output: %w", err)
	}
	var stats []docschema.FieldStat
	if inferred := docschema.Infer(docs, nil); inferred != nil {
		stats = docschema.FieldStats(inferred.Schema, docs)
	}
	d.printf("%s\n", RenderFieldStats(stats))
	return nil
}

func (d *demo) filter(text string) (string, error) {
	if d.opts.Filter == nil {
		return d.opts.Limits.TrimText(text)
	}
	res, err := d.opts.Filter.Run([]byte(text), false, 0)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(res.Values)+len(res.Errors))
	for _, v := range res.Values {
		b, err := json.MarshalIndent(d.opts.Limits.Trim(v), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding jq output: %w", err)
		}
		parts = append(parts, string(b))
	}
	for _, e := range res.Errors {
		parts = append(parts, Error("jq: "+e))
	}
	return strings.Join(parts, "\n"), nil
}

func resultText(res *sdkmcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
