// Package schema infers the shape of schemaless collections.
//
// Inference is sampling based: a bounded random sample is drawn with the
// server's $sample stage and summarized locally over top-level fields only.
// Fields absent from every sampled document do not appear, and the sample
// differs between calls.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tanjirantu/mcp-mongodb/internal/database"
)

// DefaultSampleSize bounds the number of documents inspected per inference.
const DefaultSampleSize = 100

// Entry summarizes one top-level field across the sample.
type Entry struct {
	Field string   `json:"_id"`
	Types []string `json:"types"` // distinct $type aliases, sorted
	Count int      `json:"count"` // documents in the sample carrying the field
}

// Engine runs schema inference against the handle's database.
type Engine struct {
	handle     *database.Handle
	sampleSize int
}

// NewEngine creates an inference engine. A non-positive sample size falls
// back to DefaultSampleSize.
func NewEngine(h *database.Handle, sampleSize int) *Engine {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Engine{handle: h, sampleSize: sampleSize}
}

// SampleSize returns the configured sample bound.
func (e *Engine) SampleSize() int {
	return e.sampleSize
}

// Infer samples up to SampleSize documents of collection and summarizes them.
func (e *Engine) Infer(ctx context.Context, collection string) ([]Entry, error) {
	db, err := e.handle.DB()
	if err != nil {
		return nil, err
	}

	exists, err := db.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("checking collection %q: %w", collection, err)
	}
	if !exists {
		return nil, &database.CollectionNotFoundError{Name: collection}
	}

	pipeline := []bson.D{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: e.sampleSize}}}},
	}
	docs, err := db.Aggregate(ctx, collection, pipeline, nil)
	if err != nil {
		if database.IsNamespaceNotFound(err) {
			return nil, &database.CollectionNotFoundError{Name: collection}
		}
		return nil, err
	}

	entries := Summarize(docs)
	slog.Debug("schema inferred",
		slog.String("collection", collection),
		slog.Int("sampled", len(docs)),
		slog.Int("fields", len(entries)),
	)
	return entries, nil
}

// Summarize folds documents into one Entry per distinct top-level field.
// Nested documents are not descended into. Entries are ordered by
// descending count, then field name.
func Summarize(docs []bson.Raw) []Entry {
	type acc struct {
		types map[string]struct{}
		count int
	}
	fields := make(map[string]*acc)

	for _, doc := range docs {
		elems, err := doc.Elements()
		if err != nil {
			continue
		}
		for _, el := range elems {
			key := el.Key()
			a, ok := fields[key]
			if !ok {
				a = &acc{types: make(map[string]struct{})}
				fields[key] = a
			}
			a.types[TypeTag(el.Value().Type)] = struct{}{}
			a.count++
		}
	}

	entries := make([]Entry, 0, len(fields))
	for name, a := range fields {
		types := make([]string, 0, len(a.types))
		for t := range a.types {
			types = append(types, t)
		}
		sort.Strings(types)
		entries = append(entries, Entry{Field: name, Types: types, Count: a.count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Field < entries[j].Field
	})
	return entries
}
