package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers the find, findOne and aggregate tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	for _, tool := range Catalog() {
		srv.AddTool(tool, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			return d.Dispatcher.Call(ctx, req.Params.Name, req.Params.Arguments)
		})
	}
}
