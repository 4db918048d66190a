// Package prompts contains MCP prompt implementations for MongoDB.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	Database string // connected database name
	BaseURI  string // schema resource prefix, e.g. mongodb://host/db/
}
