package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tanjirantu/mcp-mongodb/internal/mcp/tools"
)

// AddTool registers a typed tool with the server, panicking at registration
// if the zero value of Out does not satisfy the output schema the SDK infers.
// Nil slices and raw BSON or JSON documents are the usual culprits.
//
// Use this instead of [sdkmcp.AddTool] to get the additional check.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
