// Package mcpsrv provides an extensible MCP server for MongoDB.
//
// This package exposes a high-level API for creating and running an MCP server
// with the builtin query tools, schema resources and prompts. Users can extend
// the server with custom tools, prompts and resources using functional options.
//
// # Basic Usage
//
// Create a server from the environment (DATABASE_URL and friends):
//
//	server, err := mcpsrv.NewServer(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close(context.Background())
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type CountInput struct {
//	    Collection string `json:"collection"`
//	}
//
//	type CountOutput struct {
//	    Count int `json:"count"`
//	}
//
//	server, err := mcpsrv.NewServer(ctx,
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "count", Description: "Count documents"},
//	        func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	                db, err := d.Handle.DB()
//	                if err != nil {
//	                    return nil, CountOutput{}, err
//	                }
//	                docs, err := db.Find(ctx, in.Collection, bson.D{}, nil)
//	                return nil, CountOutput{Count: len(docs)}, err
//	            }
//	        }),
//	)
//
// # Configuration
//
// Environment settings can be overridden:
//
//	server, err := mcpsrv.NewServer(ctx,
//	    mcpsrv.WithDatabaseURL("mongodb://localhost:27017/shop"),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/mongodb-mcp.log"),
//	)
package mcpsrv
