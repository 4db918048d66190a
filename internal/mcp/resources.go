package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/tanjirantu/mcp-mongodb/internal/database"
	"github.com/tanjirantu/mcp-mongodb/internal/mcp/tools"
	"github.com/tanjirantu/mcp-mongodb/internal/schema"
)

// Resource URI scheme: mongodb://
// Supported URIs:
//   mongodb://{hosts}/{database}/{collection}/schema

// Method names served by resourceMiddleware.
const (
	methodListResources = "resources/list"
	methodReadResource  = "resources/read"
)

// SchemaURITemplate advertises the schema resource shape to clients.
const SchemaURITemplate = "mongodb://{host}/{database}/{collection}/schema"

// registerResources registers the schema resource template. The concrete
// resources change with the collection set, so listing is served by
// resourceMiddleware. Reads of mongodb URIs are routed to
// handleResourceSchema by the middleware before template matching, which
// cannot match collection names containing "/" and would hide the URI
// validation errors.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: SchemaURITemplate,
		Name:        "Collection Schema",
		Description: "Sampled schema of a collection: one entry per top-level field with the observed BSON types and how many sampled documents carry it. Approximate; fields absent from the sample are omitted.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.8,
		},
	}, s.handleResourceSchema)
}

// resourceMiddleware answers resources/list and resources/read from the live
// collection set instead of the static registry.
func (s *Server) resourceMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			switch method {
			case methodListResources:
				res, err := s.listResources(ctx)
				if err != nil {
					return nil, err
				}
				// Statically registered resources follow the collections.
				if static, err := next(ctx, method, req); err == nil {
					if lr, ok := static.(*sdkmcp.ListResourcesResult); ok && lr != nil {
						res.Resources = append(res.Resources, lr.Resources...)
					}
				}
				return res, nil
			case methodReadResource:
				if r, ok := req.(*sdkmcp.ReadResourceRequest); ok && r.Params != nil && isSchemaURI(r.Params.URI) {
					res, err := s.handleResourceSchema(ctx, r)
					if err != nil {
						return nil, err
					}
					return res, nil
				}
			}
			return next(ctx, method, req)
		}
	}
}

// Resource handlers

// handleResourceSchema is the read path for every schema resource.
func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return s.readSchema(ctx, req.Params.URI)
}

// listResources describes every collection with a one-document property sketch.
func (s *Server) listResources(ctx context.Context) (*sdkmcp.ListResourcesResult, error) {
	db, err := s.deps.Handle.DB()
	if err != nil {
		return nil, tools.WrapDatabaseError(err)
	}

	names, err := db.CollectionNames(ctx)
	if err != nil {
		return nil, tools.WrapDatabaseError(err)
	}

	info := s.deps.Handle.Info()
	resources := make([]*sdkmcp.Resource, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.listConcurrency())
	for i, name := range names {
		g.Go(func() error {
			doc, err := db.FindOne(gctx, name, bson.D{}, nil)
			if err != nil {
				return fmt.Errorf("probing collection %q: %w", name, err)
			}
			props, err := tools.MarshalPretty(schema.Sketch(doc))
			if err != nil {
				return fmt.Errorf("serializing properties of %q: %w", name, err)
			}
			resources[i] = &sdkmcp.Resource{
				URI:      info.SchemaURI(name),
				Name:     name,
				MIMEType: tools.MimeJSON,
				Meta:     sdkmcp.Meta{"properties": props},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, tools.WrapDatabaseError(err)
	}

	slog.Debug("resources listed", slog.Int("collections", len(resources)))
	return &sdkmcp.ListResourcesResult{Resources: resources}, nil
}

// readSchema validates a schema URI and returns the inferred summary.
func (s *Server) readSchema(ctx context.Context, uri string) (*sdkmcp.ReadResourceResult, error) {
	if !s.deps.Handle.Ready() {
		return nil, tools.WrapDatabaseError(database.ErrNotInitialized)
	}

	collection, err := parseSchemaURI(uri, s.deps.Handle.Info().Database)
	if err != nil {
		return nil, err
	}

	entries, err := s.deps.Schema.Infer(ctx, collection)
	if err != nil {
		return nil, tools.WrapDatabaseError(err)
	}

	return toResourceResult(uri, entries)
}

func (s *Server) listConcurrency() int {
	if s.deps.Config != nil && s.deps.Config.ListConcurrency > 0 {
		return s.deps.Config.ListConcurrency
	}
	return 1
}

// Helper functions

// isSchemaURI reports whether uri uses a MongoDB scheme and so belongs to
// the schema resources rather than to a custom registration.
func isSchemaURI(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return true // let readSchema report it
	}
	return u.Scheme == "mongodb" || u.Scheme == "mongodb+srv"
}

// parseSchemaURI extracts the collection name from .../<db>/<collection>/schema.
// The database segment must name the connected database.
func parseSchemaURI(uri, connected string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", tools.ErrInvalidInputf("invalid resource URI: %v", err)
	}

	parts := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
	if len(parts) < 3 {
		return "", tools.ErrInvalidInput("invalid resource URI: expected <database>/<collection>/schema")
	}
	if parts[len(parts)-1] != database.SchemaSuffix {
		return "", tools.ErrInvalidInputf("invalid resource URI: last path segment must be %q", database.SchemaSuffix)
	}

	segments := make([]string, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		seg, err := url.PathUnescape(p)
		if err != nil {
			return "", tools.ErrInvalidInputf("invalid resource URI: %v", err)
		}
		segments = append(segments, seg)
	}

	if segments[0] != connected {
		return "", tools.ErrInvalidInputf("database name mismatch: URI names %q but connected to %q", segments[0], connected)
	}

	collection := strings.Join(segments[1:], "/")
	if collection == "" {
		return "", tools.ErrInvalidInput("invalid resource URI: collection name is empty")
	}
	return collection, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	text, err := tools.MarshalPretty(content)
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     text,
			},
		},
	}, nil
}
