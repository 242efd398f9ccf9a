package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/QuietTern/embedgen/internal/types"
)

// Postgres implements Storage using PostgreSQL with pgvector
type Postgres struct {
	pool *pgxpool.Pool
	dim  int
}

// NewPostgres creates a new Postgres storage with a dim-length vector column
func NewPostgres(ctx context.Context, dsn string, dim int) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	p := &Postgres{pool: pool, dim: dim}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS records (
			id BIGSERIAL PRIMARY KEY,
			text_hash TEXT NOT NULL,
			text TEXT NOT NULL,
			source TEXT NOT NULL CHECK(source IN ('mock', 'model', 'fallback')),
			model TEXT NOT NULL DEFAULT '',
			dim INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS record_embeddings (
			record_id BIGINT PRIMARY KEY REFERENCES records(id) ON DELETE CASCADE,
			embedding vector(%d)
		);

		CREATE INDEX IF NOT EXISTS idx_records_text_hash ON records(text_hash);
		CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
		CREATE INDEX IF NOT EXISTS idx_records_model ON records(model);

		CREATE INDEX IF NOT EXISTS idx_embeddings_vector
		ON record_embeddings USING hnsw (embedding vector_cosine_ops);
	`, p.dim)
	_, err := p.pool.Exec(ctx, schema)
	return err
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Save(ctx context.Context, rec types.Record, vector []float32) (*types.Record, error) {
	if err := rec.Source.Validate(); err != nil {
		return nil, err
	}
	if len(vector) != p.dim {
		return nil, fmt.Errorf("vector length %d does not match store dimension %d", len(vector), p.dim)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	stored := types.Record{
		TextHash: rec.TextHash,
		Text:     rec.Text,
		Source:   rec.Source,
		Model:    rec.Model,
		Dim:      len(vector),
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO records (text_hash, text, source, model, dim)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		rec.TextHash, rec.Text, rec.Source, rec.Model, len(vector),
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	vec := pgvector.NewVector(vector)
	_, err = tx.Exec(ctx,
		`INSERT INTO record_embeddings (record_id, embedding) VALUES ($1, $2)`,
		stored.ID, vec,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert embedding: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &stored, nil
}

func (p *Postgres) Get(ctx context.Context, id int64) (*types.Record, error) {
	var r types.Record
	var source string
	err := p.pool.QueryRow(ctx,
		`SELECT id, text_hash, text, source, model, dim, created_at FROM records WHERE id = $1`, id,
	).Scan(&r.ID, &r.TextHash, &r.Text, &source, &r.Model, &r.Dim, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	r.Source = types.Source(source)
	return &r, nil
}

func (p *Postgres) Nearest(ctx context.Context, vector []float32, opts types.SearchOpts) ([]types.Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(vector)

	query := `
		SELECT r.id, r.text_hash, r.text, r.source, r.model, r.dim, r.created_at
		FROM records r
		JOIN record_embeddings e ON r.id = e.record_id
		WHERE 1=1
	`
	args := []interface{}{vec}
	argNum := 2

	if opts.Source != "" {
		query += fmt.Sprintf(" AND r.source = $%d", argNum)
		args = append(args, opts.Source)
		argNum++
	}
	if opts.Model != "" {
		query += fmt.Sprintf(" AND r.model = $%d", argNum)
		args = append(args, opts.Model)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY e.embedding <=> $1 LIMIT $%d", argNum)
	args = append(args, limit)

	return p.queryRecords(ctx, query, args...)
}

func (p *Postgres) List(ctx context.Context, opts types.ListOpts) ([]types.Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, text_hash, text, source, model, dim, created_at
		FROM records
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if opts.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argNum)
		args = append(args, opts.Source)
		argNum++
	}
	if opts.Model != "" {
		query += fmt.Sprintf(" AND model = $%d", argNum)
		args = append(args, opts.Model)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argNum)
	args = append(args, limit)
	argNum++

	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, opts.Offset)
	}

	return p.queryRecords(ctx, query, args...)
}

func (p *Postgres) Delete(ctx context.Context, id int64) error {
	// record_embeddings cascades
	result, err := p.pool.Exec(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	return nil
}

func (p *Postgres) queryRecords(ctx context.Context, query string, args ...interface{}) ([]types.Record, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var r types.Record
		var source string

		if err := rows.Scan(&r.ID, &r.TextHash, &r.Text, &source, &r.Model, &r.Dim, &r.CreatedAt); err != nil {
			return nil, err
		}

		r.Source = types.Source(source)
		records = append(records, r)
	}

	return records, rows.Err()
}
