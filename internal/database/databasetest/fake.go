// Package databasetest provides an in-memory database.Database for tests.
package databasetest

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tanjirantu/mcp-mongodb/internal/database"
)

// Fake is an in-memory Database. Filters match on top-level equality only;
// pipelines honour $sample and $limit and otherwise return every document,
// unless AggregateFunc is set.
type Fake struct {
	DBName string

	// Err, when set, is returned by every query method.
	Err error
	// AggregateFunc overrides Aggregate when set.
	AggregateFunc func(collection string, pipeline []bson.D) ([]bson.Raw, error)

	mu          sync.Mutex
	order       []string
	collections map[string][]bson.Raw
	calls       map[string]int
	pipelines   [][]bson.D
	findOpts    []*database.FindOptions
	aggOpts     []*database.AggregateOptions
}

var _ database.Database = (*Fake)(nil)

// New returns an empty fake for the named database.
func New(name string) *Fake {
	return &Fake{
		DBName:      name,
		collections: make(map[string][]bson.Raw),
		calls:       make(map[string]int),
	}
}

// Insert adds documents to a collection, creating it when needed.
// Documents are anything bson.Marshal accepts.
func (f *Fake) Insert(collection string, docs ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.collections[collection]; !ok {
		f.order = append(f.order, collection)
		f.collections[collection] = nil
	}
	for _, d := range docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			panic(err)
		}
		f.collections[collection] = append(f.collections[collection], raw)
	}
}

// CreateCollection adds an empty collection.
func (f *Fake) CreateCollection(name string) {
	f.Insert(name)
}

// Calls returns how many times method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of invocations across all methods except Name.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Pipelines returns every pipeline passed to Aggregate, in call order.
func (f *Fake) Pipelines() [][]bson.D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]bson.D(nil), f.pipelines...)
}

// FindOptions returns the options of every Find and FindOne call, in call order.
func (f *Fake) FindOptions() []*database.FindOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*database.FindOptions(nil), f.findOpts...)
}

// AggregateOptions returns the options of every Aggregate call, in call order.
func (f *Fake) AggregateOptions() []*database.AggregateOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*database.AggregateOptions(nil), f.aggOpts...)
}

func (f *Fake) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.Err
}

func (f *Fake) Name() string {
	return f.DBName
}

func (f *Fake) CollectionNames(ctx context.Context) ([]string, error) {
	if err := f.record("CollectionNames"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.order...), nil
}

func (f *Fake) CollectionExists(ctx context.Context, name string) (bool, error) {
	if err := f.record("CollectionExists"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.collections[name]
	return ok, nil
}

func (f *Fake) FindOne(ctx context.Context, collection string, filter bson.D, opts *database.FindOptions) (bson.Raw, error) {
	if err := f.record("FindOne"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.findOpts = append(f.findOpts, opts)
	f.mu.Unlock()

	docs := f.match(collection, filter)
	if opts != nil && opts.Skip != nil {
		docs = skip(docs, *opts.Skip)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (f *Fake) Find(ctx context.Context, collection string, filter bson.D, opts *database.FindOptions) ([]bson.Raw, error) {
	if err := f.record("Find"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.findOpts = append(f.findOpts, opts)
	f.mu.Unlock()

	docs := f.match(collection, filter)
	if opts != nil {
		if opts.Skip != nil {
			docs = skip(docs, *opts.Skip)
		}
		if opts.Limit != nil && *opts.Limit > 0 && int(*opts.Limit) < len(docs) {
			docs = docs[:*opts.Limit]
		}
	}
	return docs, nil
}

func (f *Fake) Aggregate(ctx context.Context, collection string, pipeline []bson.D, opts *database.AggregateOptions) ([]bson.Raw, error) {
	if err := f.record("Aggregate"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.pipelines = append(f.pipelines, pipeline)
	f.aggOpts = append(f.aggOpts, opts)
	f.mu.Unlock()

	if f.AggregateFunc != nil {
		return f.AggregateFunc(collection, pipeline)
	}

	docs := f.match(collection, nil)
	for _, stage := range pipeline {
		for _, op := range stage {
			switch op.Key {
			case "$sample":
				if spec, ok := op.Value.(bson.D); ok {
					docs = truncate(docs, spec.Map()["size"])
				}
			case "$limit":
				docs = truncate(docs, op.Value)
			}
		}
	}
	return docs, nil
}

func (f *Fake) match(collection string, filter bson.D) []bson.Raw {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]bson.Raw, 0)
	for _, doc := range f.collections[collection] {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func matches(doc bson.Raw, filter bson.D) bool {
	for _, cond := range filter {
		t, data, err := bson.MarshalValue(cond.Value)
		if err != nil {
			return false
		}
		got, err := doc.LookupErr(cond.Key)
		if err != nil {
			return false
		}
		if !got.Equal(bson.RawValue{Type: t, Value: data}) {
			return false
		}
	}
	return true
}

func skip(docs []bson.Raw, n int64) []bson.Raw {
	if n >= int64(len(docs)) {
		return nil
	}
	return docs[n:]
}

func truncate(docs []bson.Raw, size any) []bson.Raw {
	var n int
	switch v := size.(type) {
	case int:
		n = v
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	default:
		return docs
	}
	if n < len(docs) {
		return docs[:n]
	}
	return docs
}
