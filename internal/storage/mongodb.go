package storage

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/QuietTern/embedgen/internal/types"
)

// MongoDB implements Storage using MongoDB with Atlas Vector Search
type MongoDB struct {
	client    *mongo.Client
	db        *mongo.Database
	records   *mongo.Collection
	idCounter int64
}

// recordDoc is the MongoDB document structure
type recordDoc struct {
	ID        int64     `bson:"_id"`
	TextHash  string    `bson:"text_hash"`
	Text      string    `bson:"text"`
	Source    string    `bson:"source"`
	Model     string    `bson:"model,omitempty"`
	Dim       int       `bson:"dim"`
	CreatedAt time.Time `bson:"created_at"`
	Embedding []float32 `bson:"embedding"`
}

// NewMongoDB creates a new MongoDB storage
func NewMongoDB(ctx context.Context, uri, database string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	records := db.Collection("records")

	m := &MongoDB{
		client:  client,
		db:      db,
		records: records,
	}

	if err := m.initIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	// Initialize ID counter from max existing ID
	if err := m.initIDCounter(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to init id counter: %w", err)
	}

	return m, nil
}

func (m *MongoDB) initIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "text_hash", Value: 1}}},
		{Keys: bson.D{{Key: "source", Value: 1}}},
		{Keys: bson.D{{Key: "model", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := m.records.Indexes().CreateMany(ctx, indexes)
	return err
}

func (m *MongoDB) initIDCounter(ctx context.Context) error {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	var doc recordDoc
	err := m.records.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		m.idCounter = 0
		return nil
	}
	if err != nil {
		return err
	}
	m.idCounter = doc.ID
	return nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) Save(ctx context.Context, rec types.Record, vector []float32) (*types.Record, error) {
	if err := rec.Source.Validate(); err != nil {
		return nil, err
	}

	id := atomic.AddInt64(&m.idCounter, 1)
	now := time.Now()

	doc := recordDoc{
		ID:        id,
		TextHash:  rec.TextHash,
		Text:      rec.Text,
		Source:    string(rec.Source),
		Model:     rec.Model,
		Dim:       len(vector),
		CreatedAt: now,
		Embedding: vector,
	}

	_, err := m.records.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	return &types.Record{
		ID:        id,
		TextHash:  rec.TextHash,
		Text:      rec.Text,
		Source:    rec.Source,
		Model:     rec.Model,
		Dim:       len(vector),
		CreatedAt: now,
	}, nil
}

func (m *MongoDB) Get(ctx context.Context, id int64) (*types.Record, error) {
	var doc recordDoc
	err := m.records.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := docToRecord(doc)
	return &rec, nil
}

func (m *MongoDB) Nearest(ctx context.Context, vector []float32, opts types.SearchOpts) ([]types.Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	// Build filter
	filter := bson.D{}
	if opts.Source != "" {
		filter = append(filter, bson.E{Key: "source", Value: string(opts.Source)})
	}
	if opts.Model != "" {
		filter = append(filter, bson.E{Key: "model", Value: opts.Model})
	}

	// Atlas Vector Search pipeline
	// Note: This requires an Atlas Vector Search index named "embedding_index"
	// For non-Atlas deployments, falls back to regular query (no vector search)
	search := bson.D{
		{Key: "index", Value: "embedding_index"},
		{Key: "path", Value: "embedding"},
		{Key: "queryVector", Value: vector},
		{Key: "numCandidates", Value: limit * 10},
		{Key: "limit", Value: limit},
	}
	if len(filter) > 0 {
		search = append(search, bson.E{Key: "filter", Value: filter})
	}
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
	}

	cursor, err := m.records.Aggregate(ctx, pipeline)
	if err != nil {
		// Fallback to regular query if vector search not available
		return m.listFallback(ctx, opts)
	}
	defer cursor.Close(ctx)

	return m.cursorToRecords(ctx, cursor)
}

func (m *MongoDB) listFallback(ctx context.Context, opts types.SearchOpts) ([]types.Record, error) {
	listOpts := types.ListOpts{
		Limit:  opts.Limit,
		Source: opts.Source,
		Model:  opts.Model,
	}
	return m.List(ctx, listOpts)
}

func (m *MongoDB) List(ctx context.Context, opts types.ListOpts) ([]types.Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	filter := bson.D{}
	if opts.Source != "" {
		filter = append(filter, bson.E{Key: "source", Value: string(opts.Source)})
	}
	if opts.Model != "" {
		filter = append(filter, bson.E{Key: "model", Value: opts.Model})
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	if opts.Offset > 0 {
		findOpts = findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := m.records.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return m.cursorToRecords(ctx, cursor)
}

func (m *MongoDB) Delete(ctx context.Context, id int64) error {
	result, err := m.records.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return types.ErrNotFound
	}

	return nil
}

func (m *MongoDB) cursorToRecords(ctx context.Context, cursor *mongo.Cursor) ([]types.Record, error) {
	var records []types.Record
	for cursor.Next(ctx) {
		var doc recordDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, docToRecord(doc))
	}

	return records, cursor.Err()
}

func docToRecord(doc recordDoc) types.Record {
	return types.Record{
		ID:        doc.ID,
		TextHash:  doc.TextHash,
		Text:      doc.Text,
		Source:    types.Source(doc.Source),
		Model:     doc.Model,
		Dim:       doc.Dim,
		CreatedAt: doc.CreatedAt,
	}
}
