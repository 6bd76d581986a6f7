// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists conversion records in a SQLite database so
// past conversions can be listed, searched, and exported.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akarpov/mhb2svg/pkg/types"
)

const dbFile = "catalog.db"

// Store manages the conversion catalog database.
type Store struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// NewStore opens or creates the catalog database at
// catalogDir/catalog.db, creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.CatalogDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.CatalogDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		catalogDir: cfg.CatalogDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS whiteboards (
			id TEXT PRIMARY KEY,
			source TEXT,
			title TEXT,
			slides INTEGER NOT NULL DEFAULT 0,
			pages INTEGER NOT NULL DEFAULT 0,
			color INTEGER NOT NULL DEFAULT 0,
			converted_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS slides (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			whiteboard_id TEXT NOT NULL REFERENCES whiteboards(id),
			name TEXT NOT NULL,
			svg_paths TEXT,
			pages INTEGER,
			strokes INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slides_whiteboard_id ON slides(whiteboard_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// boardTitle picks a display title out of the document metadata. Field
// names differ between firmware versions.
func boardTitle(meta types.DocumentInfo) string {
	for _, name := range []string{"Title", "Name", "DocumentName"} {
		if v := meta.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// Record upserts one conversion record: the whiteboard row is replaced
// and its slide rows rewritten.
func (s *Store) Record(ctx context.Context, record types.ConversionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	color := 0
	if record.Color {
		color = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO whiteboards (id, source, title, slides, pages, color, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source=excluded.source, title=excluded.title, slides=excluded.slides,
			pages=excluded.pages, color=excluded.color, converted_at=excluded.converted_at`,
		record.ID, record.Source, boardTitle(record.Metadata),
		len(record.Slides), record.TotalPages(), color,
		record.ConvertedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting whiteboard: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM slides WHERE whiteboard_id = ?`, record.ID); err != nil {
		return fmt.Errorf("deleting old slides: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO slides (whiteboard_id, name, svg_paths, pages, strokes)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, slide := range record.Slides {
		pathsJSON, _ := json.Marshal(slide.SVGPaths)
		if _, err := stmt.ExecContext(ctx,
			record.ID, slide.Name, string(pathsJSON), slide.Pages, slide.Strokes); err != nil {
			return fmt.Errorf("inserting slide %s: %w", slide.Name, err)
		}
	}

	return tx.Commit()
}

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Title filters whiteboards by a case-insensitive substring match
	// on title or ID.
	Title string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one catalog row with its slide outputs.
type Entry struct {
	ID          string              `json:"id" yaml:"id"`
	Source      string              `json:"source" yaml:"source"`
	Title       string              `json:"title,omitempty" yaml:"title,omitempty"`
	Color       bool                `json:"color" yaml:"color"`
	ConvertedAt time.Time           `json:"converted_at" yaml:"converted_at"`
	Slides      []types.SlideOutput `json:"slides" yaml:"slides"`
}

// List queries the catalog, most recent conversions first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	query := `SELECT id, source, title, color, converted_at FROM whiteboards`
	var args []any
	if opts.Title != "" {
		query += ` WHERE title LIKE ? OR id LIKE ?`
		pattern := "%" + opts.Title + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY converted_at DESC LIMIT ?`
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying whiteboards: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			color     int
			converted string
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Title, &color, &converted); err != nil {
			return nil, fmt.Errorf("scanning whiteboard row: %w", err)
		}
		e.Color = color != 0
		if t, parseErr := time.Parse(time.RFC3339, converted); parseErr == nil {
			e.ConvertedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating whiteboard rows: %w", err)
	}

	for i := range entries {
		slides, err := s.slidesFor(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Slides = slides
	}
	return entries, nil
}

func (s *Store) slidesFor(ctx context.Context, whiteboardID string) ([]types.SlideOutput, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, svg_paths, pages, strokes FROM slides
		 WHERE whiteboard_id = ? ORDER BY name`, whiteboardID)
	if err != nil {
		return nil, fmt.Errorf("querying slides: %w", err)
	}
	defer rows.Close()

	var slides []types.SlideOutput
	for rows.Next() {
		var (
			slide     types.SlideOutput
			pathsJSON string
		)
		if err := rows.Scan(&slide.Name, &pathsJSON, &slide.Pages, &slide.Strokes); err != nil {
			return nil, fmt.Errorf("scanning slide row: %w", err)
		}
		if pathsJSON != "" {
			if err := json.Unmarshal([]byte(pathsJSON), &slide.SVGPaths); err != nil {
				return nil, fmt.Errorf("decoding svg paths for slide %s: %w", slide.Name, err)
			}
		}
		slides = append(slides, slide)
	}
	return slides, rows.Err()
}
