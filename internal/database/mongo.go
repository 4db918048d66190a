package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoDatabase implements Database on the official driver.
type mongoDatabase struct {
	db *mongo.Database
}

func (m *mongoDatabase) Name() string {
	return m.db.Name()
}

func (m *mongoDatabase) CollectionNames(ctx context.Context) ([]string, error) {
	return m.db.ListCollectionNames(ctx, bson.D{})
}

func (m *mongoDatabase) CollectionExists(ctx context.Context, name string) (bool, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// FindOne runs a single-batch find so every find option applies.
func (m *mongoDatabase) FindOne(ctx context.Context, collection string, filter bson.D, opts *FindOptions) (bson.Raw, error) {
	cur, err := m.db.Collection(collection).Find(ctx, orEmpty(filter), opts.find().SetLimit(-1))
	if err != nil {
		return nil, err
	}
	docs, err := drain(ctx, cur)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

func (m *mongoDatabase) Find(ctx context.Context, collection string, filter bson.D, opts *FindOptions) ([]bson.Raw, error) {
	cur, err := m.db.Collection(collection).Find(ctx, orEmpty(filter), opts.find())
	if err != nil {
		return nil, err
	}
	return drain(ctx, cur)
}

func (m *mongoDatabase) Aggregate(ctx context.Context, collection string, pipeline []bson.D, opts *AggregateOptions) ([]bson.Raw, error) {
	if pipeline == nil {
		pipeline = []bson.D{}
	}
	cur, err := m.db.Collection(collection).Aggregate(ctx, mongo.Pipeline(pipeline), opts.aggregate())
	if err != nil {
		return nil, err
	}
	return drain(ctx, cur)
}

// drain materializes a cursor in server order. Current is reused between
// calls to Next, so each document is copied.
func drain(ctx context.Context, cur *mongo.Cursor) ([]bson.Raw, error) {
	defer cur.Close(ctx)

	docs := make([]bson.Raw, 0)
	for cur.Next(ctx) {
		doc := make(bson.Raw, len(cur.Current))
		copy(doc, cur.Current)
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func orEmpty(filter bson.D) bson.D {
	if filter == nil {
		return bson.D{}
	}
	return filter
}

func (o *FindOptions) find() *options.FindOptions {
	fo := options.Find()
	if o == nil {
		return fo
	}
	if o.AllowDiskUse != nil {
		fo.SetAllowDiskUse(*o.AllowDiskUse)
	}
	if o.AllowPartialResults != nil {
		fo.SetAllowPartialResults(*o.AllowPartialResults)
	}
	if o.BatchSize != nil {
		fo.SetBatchSize(*o.BatchSize)
	}
	if o.Collation != nil {
		fo.SetCollation(o.Collation)
	}
	if o.Comment != nil {
		fo.SetComment(*o.Comment)
	}
	if o.CursorType != nil {
		fo.SetCursorType(*o.CursorType)
	}
	if o.Hint != nil {
		fo.SetHint(o.Hint)
	}
	if o.Let != nil {
		fo.SetLet(o.Let)
	}
	if o.Limit != nil {
		fo.SetLimit(*o.Limit)
	}
	if o.Max != nil {
		fo.SetMax(o.Max)
	}
	if o.MaxAwaitTime != nil {
		fo.SetMaxAwaitTime(*o.MaxAwaitTime)
	}
	if o.MaxTime != nil {
		fo.SetMaxTime(*o.MaxTime)
	}
	if o.Min != nil {
		fo.SetMin(o.Min)
	}
	if o.NoCursorTimeout != nil {
		fo.SetNoCursorTimeout(*o.NoCursorTimeout)
	}
	if o.Projection != nil {
		fo.SetProjection(o.Projection)
	}
	if o.ReturnKey != nil {
		fo.SetReturnKey(*o.ReturnKey)
	}
	if o.ShowRecordID != nil {
		fo.SetShowRecordID(*o.ShowRecordID)
	}
	if o.Skip != nil {
		fo.SetSkip(*o.Skip)
	}
	if o.Sort != nil {
		fo.SetSort(o.Sort)
	}
	return fo
}

func (o *AggregateOptions) aggregate() *options.AggregateOptions {
	ao := options.Aggregate()
	if o == nil {
		return ao
	}
	if o.AllowDiskUse != nil {
		ao.SetAllowDiskUse(*o.AllowDiskUse)
	}
	if o.BatchSize != nil {
		ao.SetBatchSize(*o.BatchSize)
	}
	if o.BypassDocumentValidation != nil {
		ao.SetBypassDocumentValidation(*o.BypassDocumentValidation)
	}
	if o.Collation != nil {
		ao.SetCollation(o.Collation)
	}
	if o.Comment != nil {
		ao.SetComment(*o.Comment)
	}
	if o.Custom != nil {
		ao.SetCustom(o.Custom)
	}
	if o.Hint != nil {
		ao.SetHint(o.Hint)
	}
	if o.Let != nil {
		ao.SetLet(o.Let)
	}
	if o.MaxAwaitTime != nil {
		ao.SetMaxAwaitTime(*o.MaxAwaitTime)
	}
	if o.MaxTime != nil {
		ao.SetMaxTime(*o.MaxTime)
	}
	return ao
}
