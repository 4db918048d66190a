package tools

import (
	"github.com/tanjirantu/mcp-mongodb/internal/config"
	"github.com/tanjirantu/mcp-mongodb/internal/database"
	"github.com/tanjirantu/mcp-mongodb/internal/schema"
)

// Deps contains all dependencies needed by tool and resource handlers.
type Deps struct {
	Handle     *database.Handle
	Config     *config.Config
	Schema     *schema.Engine
	Dispatcher *Dispatcher
}

// NewDeps wires the engines around a connection handle.
func NewDeps(h *database.Handle, cfg *config.Config) *Deps {
	return &Deps{
		Handle:     h,
		Config:     cfg,
		Schema:     schema.NewEngine(h, cfg.SchemaSample),
		Dispatcher: NewDispatcher(h),
	}
}
