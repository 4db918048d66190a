package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Prompt names.
const (
	ExploreCollection = "mongodb_explore_collection"
	QueryGuide        = "mongodb_query_guide"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        ExploreCollection,
		Description: "RECOMMENDED: Explore one collection. Reads the sampled schema resource first, then walks through findOne, find and aggregate with queries shaped by that schema.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "collection",
				Description: "Collection to explore (e.g., 'products')",
				Required:    true,
			},
		},
	}, HandleExploreCollection(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        QueryGuide,
		Description: "Reference for the query tools: argument shapes, supported options and Extended JSON notation.",
	}, HandleQueryGuide(cfg))
}
