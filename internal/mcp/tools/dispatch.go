package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tanjirantu/mcp-mongodb/internal/database"
)

// Dispatcher validates tool calls and runs them against the connected
// database. It holds no per-request state; each call is single-shot.
type Dispatcher struct {
	handle *database.Handle
}

// NewDispatcher creates a dispatcher bound to the connection handle.
func NewDispatcher(h *database.Handle) *Dispatcher {
	return &Dispatcher{handle: h}
}

// Call validates raw arguments for the named tool, executes it and wraps
// the result. Invalid arguments never reach the database.
func (d *Dispatcher) Call(ctx context.Context, tool string, args json.RawMessage) (*sdkmcp.CallToolResult, error) {
	inv, err := ParseInvocation(tool, args)
	if err != nil {
		return nil, err
	}
	return d.Execute(ctx, inv)
}

// Execute runs a validated invocation.
func (d *Dispatcher) Execute(ctx context.Context, inv *Invocation) (*sdkmcp.CallToolResult, error) {
	db, err := d.handle.DB()
	if err != nil {
		return nil, WrapDatabaseError(err)
	}

	var text string
	switch inv.Tool {
	case Find:
		docs, err := db.Find(ctx, inv.Collection, inv.Query, inv.FindOpts)
		if err != nil {
			return nil, WrapDatabaseError(err)
		}
		slog.Debug("find completed", slog.String("collection", inv.Collection), slog.Int("documents", len(docs)))
		text, err = RenderDocuments(docs)
		if err != nil {
			return nil, err
		}

	case FindOne:
		doc, err := db.FindOne(ctx, inv.Collection, inv.Query, inv.FindOpts)
		if err != nil {
			return nil, WrapDatabaseError(err)
		}
		slog.Debug("findOne completed", slog.String("collection", inv.Collection), slog.Bool("matched", doc != nil))
		text, err = RenderDocument(doc)
		if err != nil {
			return nil, err
		}

	case Aggregate:
		docs, err := db.Aggregate(ctx, inv.Collection, inv.Pipeline, inv.AggOpts)
		if err != nil {
			return nil, WrapDatabaseError(err)
		}
		slog.Debug("aggregate completed",
			slog.String("collection", inv.Collection),
			slog.Int("stages", len(inv.Pipeline)),
			slog.Int("documents", len(docs)),
		)
		text, err = RenderDocuments(docs)
		if err != nil {
			return nil, err
		}

	default:
		return nil, ErrInvalidInputf("unknown tool: %s", inv.Tool)
	}

	return MakeTextToolResult(inv.Tool, text), nil
}
