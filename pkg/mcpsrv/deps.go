package mcpsrv

import (
	"github.com/tanjirantu/mcp-mongodb/internal/config"
	"github.com/tanjirantu/mcp-mongodb/internal/database"
	"github.com/tanjirantu/mcp-mongodb/internal/mcp/tools"
	"github.com/tanjirantu/mcp-mongodb/internal/schema"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Handle     *database.Handle
	Config     *config.Config
	Schema     *schema.Engine
	Dispatcher *tools.Dispatcher
}
