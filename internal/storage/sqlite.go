//go:build cgo

// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/QuietTern/embedgen/internal/types"
)

// SQLite implements Storage using SQLite with sqlite-vec
type SQLite struct {
	conn *sql.DB
	dim  int
}

// NewSQLite creates a new SQLite storage with a dim-length vector table
func NewSQLite(path string, dim int) (*SQLite, error) {
	sqlite_vec.Auto()

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{conn: conn, dim: dim}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text_hash TEXT NOT NULL,
			text TEXT NOT NULL,
			source TEXT NOT NULL CHECK(source IN ('mock', 'model', 'fallback')),
			model TEXT NOT NULL DEFAULT '',
			dim INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_records_text_hash ON records(text_hash);
		CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
		CREATE INDEX IF NOT EXISTS idx_records_model ON records(model);

		CREATE VIRTUAL TABLE IF NOT EXISTS record_embeddings USING vec0(
			record_id INTEGER PRIMARY KEY,
			embedding FLOAT[%d]
		);
	`, s.dim)
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) Save(ctx context.Context, rec types.Record, vector []float32) (*types.Record, error) {
	if err := rec.Source.Validate(); err != nil {
		return nil, err
	}
	if len(vector) != s.dim {
		return nil, fmt.Errorf("vector length %d does not match store dimension %d", len(vector), s.dim)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO records (text_hash, text, source, model, dim) VALUES (?, ?, ?, ?, ?)`,
		rec.TextHash, rec.Text, rec.Source, rec.Model, len(vector),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vector: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO record_embeddings (record_id, embedding) VALUES (?, ?)`,
		id, string(vectorJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &types.Record{
		ID:        id,
		TextHash:  rec.TextHash,
		Text:      rec.Text,
		Source:    rec.Source,
		Model:     rec.Model,
		Dim:       len(vector),
		CreatedAt: time.Now(),
	}, nil
}

func (s *SQLite) Get(ctx context.Context, id int64) (*types.Record, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, text_hash, text, source, model, dim, created_at FROM records WHERE id = ?`, id)

	var r types.Record
	var source string
	if err := row.Scan(&r.ID, &r.TextHash, &r.Text, &source, &r.Model, &r.Dim, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	r.Source = types.Source(source)
	return &r, nil
}

func (s *SQLite) Nearest(ctx context.Context, vector []float32, opts types.SearchOpts) ([]types.Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vector: %w", err)
	}

	query := `
		SELECT r.id, r.text_hash, r.text, r.source, r.model, r.dim, r.created_at
		FROM records r
		JOIN record_embeddings e ON r.id = e.record_id
		WHERE 1=1
	`
	args := []interface{}{}

	if opts.Source != "" {
		query += " AND r.source = ?"
		args = append(args, opts.Source)
	}
	if opts.Model != "" {
		query += " AND r.model = ?"
		args = append(args, opts.Model)
	}

	query += `
		ORDER BY vec_distance_cosine(e.embedding, ?)
		LIMIT ?
	`
	args = append(args, string(vectorJSON), limit)

	return s.queryRecords(ctx, query, args...)
}

func (s *SQLite) List(ctx context.Context, opts types.ListOpts) ([]types.Record, error) {
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

	if opts.Source != "" {
		query += " AND source = ?"
		args = append(args, opts.Source)
	}
	if opts.Model != "" {
		query += " AND model = ?"
		args = append(args, opts.Model)
	}

	// id breaks ties within CURRENT_TIMESTAMP's one-second resolution
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	return s.queryRecords(ctx, query, args...)
}

func (s *SQLite) Delete(ctx context.Context, id int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_embeddings WHERE record_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return types.ErrNotFound
	}

	return tx.Commit()
}

func (s *SQLite) queryRecords(ctx context.Context, query string, args ...interface{}) ([]types.Record, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
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
