package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tanjirantu/mcp-mongodb/pkg/mcpsrv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration is loaded from environment variables:
	// - DATABASE_URL: mongodb://host:port/<database> (default: mongodb://localhost:27017/mcp_db)
	// - LOG_LEVEL: debug, info, warn, error (default: info)
	// - LOG_FILE: path to log file (default: stderr only)
	// - etc. (see internal/config for all options)
	server, err := mcpsrv.NewServer(ctx)
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		return 1
	}

	slog.Info("starting MongoDB MCP server on stdio")
	runErr := server.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("server error", "error", runErr)
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := server.Close(closeCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		return 1
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return 1
	}
	slog.Info("server stopped")
	return 0
}
