package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/shiori/internal/models"
)

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
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

	return &SQLiteCatalog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		path TEXT NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		topic_score REAL NOT NULL DEFAULT 0,
		preview TEXT NOT NULL DEFAULT '',
		pages INTEGER NOT NULL DEFAULT 0,
		chunks INTEGER NOT NULL DEFAULT 0,
		indexed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_papers_topic ON papers(topic);

	CREATE TABLE IF NOT EXISTS images (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		path TEXT NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		indexed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

const paperColumns = `id, filename, path, topic, topic_score, preview, pages, chunks, indexed_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(row scanner) (*models.Paper, error) {
	var p models.Paper
	if err := row.Scan(&p.ID, &p.Filename, &p.Path, &p.Topic, &p.TopicScore, &p.Preview,
		&p.Pages, &p.Chunks, &p.IndexedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPaper inserts a paper or replaces its fields, keeping the original indexed_at.
func (s *SQLiteCatalog) UpsertPaper(ctx context.Context, paper *models.Paper) error {
	now := time.Now()
	if paper.IndexedAt.IsZero() {
		paper.IndexedAt = now
	}
	paper.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (`+paperColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   filename = excluded.filename,
		   path = excluded.path,
		   topic = excluded.topic,
		   topic_score = excluded.topic_score,
		   preview = excluded.preview,
		   pages = excluded.pages,
		   chunks = excluded.chunks,
		   updated_at = excluded.updated_at`,
		paper.ID, paper.Filename, paper.Path, paper.Topic, paper.TopicScore, paper.Preview,
		paper.Pages, paper.Chunks, paper.IndexedAt, paper.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert paper %s: %w", paper.ID, err)
	}
	return nil
}

// GetPaper returns a paper by ID.
func (s *SQLiteCatalog) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	p, err := scanPaper(s.db.QueryRowContext(ctx,
		`SELECT `+paperColumns+` FROM papers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPapers returns the papers with the given IDs keyed by ID. Unknown IDs are omitted.
func (s *SQLiteCatalog) GetPapers(ctx context.Context, ids []string) (map[string]*models.Paper, error) {
	out := make(map[string]*models.Paper, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paperColumns+` FROM papers WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ListPapers returns papers ordered by most recently indexed.
func (s *SQLiteCatalog) ListPapers(ctx context.Context, offset, limit int) ([]*models.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paperColumns+` FROM papers ORDER BY indexed_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []*models.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// UpdatePaperLocation records the paper's new path and classification after a move.
func (s *SQLiteCatalog) UpdatePaperLocation(ctx context.Context, id, path, topic string, score float64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE papers SET path = ?, topic = ?, topic_score = ?, updated_at = ? WHERE id = ?`,
		path, topic, score, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update paper %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeletePaper removes a paper by ID.
func (s *SQLiteCatalog) DeletePaper(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpsertImages inserts or replaces image rows in a transaction.
func (s *SQLiteCatalog) UpsertImages(ctx context.Context, images []*models.Image) error {
	if len(images) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO images (id, filename, path, width, height, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   filename = excluded.filename,
		   path = excluded.path,
		   width = excluded.width,
		   height = excluded.height,
		   indexed_at = excluded.indexed_at`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, img := range images {
		img.IndexedAt = now
		if _, err := stmt.ExecContext(ctx, img.ID, img.Filename, img.Path, img.Width, img.Height, img.IndexedAt); err != nil {
			return fmt.Errorf("failed to upsert image %s: %w", img.ID, err)
		}
	}
	return tx.Commit()
}

// GetImage returns an image by ID.
func (s *SQLiteCatalog) GetImage(ctx context.Context, id string) (*models.Image, error) {
	var img models.Image
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, path, width, height, indexed_at FROM images WHERE id = ?`, id,
	).Scan(&img.ID, &img.Filename, &img.Path, &img.Width, &img.Height, &img.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("image %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// CountPapers returns the total number of papers.
func (s *SQLiteCatalog) CountPapers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`).Scan(&count)
	return count, err
}

// CountPapersByTopic returns paper counts grouped by topic. Unclassified papers use "".
func (s *SQLiteCatalog) CountPapersByTopic(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic, COUNT(*) FROM papers GROUP BY topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var topic string
		var n int64
		if err := rows.Scan(&topic, &n); err != nil {
			return nil, err
		}
		counts[topic] = n
	}
	return counts, rows.Err()
}

// CountImages returns the total number of images.
func (s *SQLiteCatalog) CountImages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteCatalog) Close() error {
	return s.db.Close()
}
