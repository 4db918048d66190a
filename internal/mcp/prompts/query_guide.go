package prompts

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleQueryGuide serves the query tool reference.
func HandleQueryGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Query Tool Guide\n\n")

		// --- Tools ---
		sb.WriteString("## Tools\n\n")
		sb.WriteString("| Goal | Tool | Arguments |\n")
		sb.WriteString("|------|------|-----------|\n")
		sb.WriteString("| Fetch matching documents | `find` | `collection`, `query`, `options` |\n")
		sb.WriteString("| Fetch the first match or `null` | `findOne` | `collection`, `query`, `options` |\n")
		sb.WriteString("| Group, count, reshape | `aggregate` | `collection`, `pipeline`, `options` |\n")

		// --- Options ---
		sb.WriteString("\n## Options\n")
		sb.WriteString("- Options are passed to the driver as written, in Extended JSON\n")
		sb.WriteString("- `find`/`findOne`: `limit`, `skip`, `sort`, `projection`, `collation`, `hint`, `comment`, `let`, `min`, `max`, `maxTimeMS`, `batchSize`, `allowDiskUse`, `allowPartialResults`, `noCursorTimeout`, `returnKey`, `showRecordId`, `cursorType`, `maxAwaitTimeMS`\n")
		sb.WriteString("- `aggregate`: `allowDiskUse`, `batchSize`, `bypassDocumentValidation`, `collation`, `comment`, `custom`, `hint`, `let`, `maxAwaitTimeMS`, `maxTimeMS`\n")
		sb.WriteString("- Only names the driver has no option for are rejected\n")

		// --- Schemas ---
		sb.WriteString("\n## Schemas\n")
		sb.WriteString("- List resources to see every collection with a one-document property sketch\n")
		sb.WriteString("- Read `" + cfg.BaseURI + "<collection>/schema` for a sampled summary of `" + cfg.Database + "`\n")

		// --- Tips ---
		sb.WriteString("\n## Tips\n")
		sb.WriteString("- Results are relaxed Extended JSON: ObjectIds appear as `{\"$oid\": ...}`\n")
		sb.WriteString("- Prefer `aggregate` with `$group` over large `find` results when counting\n")
		sb.WriteString("- Set `maxTimeMS` for queries on large collections\n")

		return &sdkmcp.GetPromptResult{
			Description: "Reference for the MongoDB query tools",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
