package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ppiankov/brandguard/internal/embedding"
	"github.com/ppiankov/brandguard/internal/model"
)

// SQLiteStore persists embedded chunks so the corpus survives restarts.
// Rows keep insertion order; each row records the embedder that produced it.
type SQLiteStore struct {
	db       *sql.DB
	embedder string
}

// NewSQLiteStore opens or creates the database at dbPath.
// embedderName tags rows written through Put.
func NewSQLiteStore(dbPath, embedderName string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, embedder: embedderName}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		category TEXT NOT NULL,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		embedder TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	CREATE INDEX IF NOT EXISTS idx_chunks_embedder ON chunks(embedder);
	`
	_, err := db.Exec(schema)
	return err
}

// Put implements Sink, replacing the rows of source in one transaction
func (s *SQLiteStore) Put(ctx context.Context, source string, chunks []model.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source = ?`, source); err != nil {
		return fmt.Errorf("failed to clear source: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO chunks (id, source, category, text, embedding, embedder, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx,
			c.ID, source, string(c.Category), c.Text, embedding.EncodeVector(c.Embedding), s.embedder, now,
		); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns the chunks written by embedderName in insertion order.
// Rows from other embedders are skipped because their vectors are not comparable.
func (s *SQLiteStore) Load(ctx context.Context, embedderName string) ([]model.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, category, text, embedding FROM chunks
		 WHERE embedder = ? ORDER BY seq`, embedderName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []model.Chunk
	for rows.Next() {
		var c model.Chunk
		var category string
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Source, &category, &c.Text, &blob); err != nil {
			return nil, err
		}
		c.Category = model.Category(category)
		vec, err := embedding.DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		c.Embedding = vec
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Count returns the number of stored rows for embedderName
func (s *SQLiteStore) Count(ctx context.Context, embedderName string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE embedder = ?`, embedderName).Scan(&n)
	return n, err
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Open builds a Store from persisted chunks, seeding it when empty and seed is set
func Open(ctx context.Context, db *SQLiteStore, embedder embedding.Embedder, seed bool, opts ...StoreOption) (*Store, error) {
	store := NewStore(embedder, opts...)
	if db != nil {
		chunks, err := db.Load(ctx, embedder.Name())
		if err != nil {
			return nil, fmt.Errorf("load chunks: %w", err)
		}
		if _, err := store.Add(chunks...); err != nil {
			return nil, err
		}
	}
	if seed {
		if _, err := SeedIfEmpty(ctx, store); err != nil {
			return nil, err
		}
	}
	return store, nil
}
