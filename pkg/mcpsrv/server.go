package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tanjirantu/mcp-mongodb/internal/config"
	"github.com/tanjirantu/mcp-mongodb/internal/database"
	"github.com/tanjirantu/mcp-mongodb/internal/logging"
	"github.com/tanjirantu/mcp-mongodb/internal/mcp"
	"github.com/tanjirantu/mcp-mongodb/internal/mcp/tools"
)

// Server is the MongoDB MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	handle     *database.Handle
	deps       *Deps
	logCleanup func() error

	closeOnce sync.Once
	closeErr  error
}

// NewServer loads configuration from the environment, applies opts, sets up
// logging and connects to MongoDB. A connection string without a database
// name or an unreachable server is a startup error.
func NewServer(ctx context.Context, opts ...Option) (*Server, error) {
	envCfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Build configuration from options
	cfg := &serverConfig{config: envCfg}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.databaseURL != "" {
		cfg.config.DatabaseURL = cfg.databaseURL
	}

	// Setup logging
	logCfg := logging.FromConfig(cfg.config)
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	info, err := database.ParseConnString(cfg.config.DatabaseURL)
	if err != nil {
		_ = logCleanup()
		return nil, err
	}

	var handle *database.Handle
	if cfg.database != nil {
		handle = database.Attach(info, cfg.database)
	} else {
		handle = database.NewHandle(info)
		if err := handle.Connect(ctx, cfg.config.DatabaseURL, cfg.config.ConnectTimeout); err != nil {
			_ = logCleanup()
			return nil, err
		}
	}

	toolDeps := tools.NewDeps(handle, cfg.config)

	// Public deps share the same values
	deps := &Deps{
		Handle:     toolDeps.Handle,
		Config:     toolDeps.Config,
		Schema:     toolDeps.Schema,
		Dispatcher: toolDeps.Dispatcher,
	}

	// Build internal server options
	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}

	// Add custom extension registration callbacks
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}

	// Add deferred tool registrations (tools that need Deps access)
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = handle.Close(ctx)
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("mcp server ready",
		slog.String("database", info.Database),
		slog.Bool("builtin_tools", !cfg.disableBuiltinTools),
		slog.Bool("builtin_prompts", !cfg.disableBuiltinPrompts),
	)

	return &Server{
		internal:   internal,
		handle:     handle,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// Run serves MCP over stdio until the context is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// Close disconnects from MongoDB and then closes the log file. Only the
// first call does any work; later calls return the first result.
func (s *Server) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.handle.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		if s.logCleanup != nil {
			if err := s.logCleanup(); err != nil {
				errs = append(errs, fmt.Errorf("closing log file: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying SDK server, for serving over a transport
// other than stdio.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
