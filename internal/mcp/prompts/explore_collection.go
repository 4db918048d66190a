package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleExploreCollection implements the collection exploration workflow.
func HandleExploreCollection(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		collection := ""
		if req.Params != nil && req.Params.Arguments != nil {
			collection = strings.TrimSpace(req.Params.Arguments["collection"])
		}
		if collection == "" {
			return nil, fmt.Errorf("argument %q is required", "collection")
		}

		var sb strings.Builder

		sb.WriteString(fmt.Sprintf("# Explore `%s`\n\n", collection))
		sb.WriteString(fmt.Sprintf("You are exploring the `%s` collection of the MongoDB database `%s`. ", collection, cfg.Database))
		sb.WriteString("The database is schemaless, so learn its shape before writing queries.\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString(fmt.Sprintf("1. **Read the schema** - fetch the resource `%s%s/schema`\n", cfg.BaseURI, collection))
		sb.WriteString("   - Each entry is `{_id: field, types: [...], count: n}` over a random sample\n")
		sb.WriteString("   - Several types for one field means documents disagree; query for each\n")
		sb.WriteString("   - Fields missing from the sample may still exist\n\n")
		sb.WriteString("2. **Look at one document** - call `findOne` with only `collection`\n\n")
		sb.WriteString("3. **Filter** - call `find` with a `query` built from fields seen in the schema\n")
		sb.WriteString("   - Always pass `options.limit` (start with 10)\n")
		sb.WriteString("   - Use `options.projection` to keep results small\n\n")
		sb.WriteString("4. **Summarize** - call `aggregate` with a `pipeline`, for example\n")
		sb.WriteString("   `[{\"$group\": {\"_id\": \"$<field>\", \"count\": {\"$sum\": 1}}}, {\"$sort\": {\"count\": -1}}]`\n\n")

		sb.WriteString("## Rules\n\n")
		sb.WriteString("- Queries and pipelines are MongoDB Extended JSON: write ObjectIds as `{\"$oid\": \"...\"}` and dates as `{\"$date\": \"...\"}`\n")
		sb.WriteString("- A `findOne` result of `null` means nothing matched\n")
		sb.WriteString("- Pipelines run as written; do not add `$out` or `$merge` stages\n")

		return &sdkmcp.GetPromptResult{
			Description: fmt.Sprintf("Explore the %s collection", collection),
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
