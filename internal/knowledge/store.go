// Package knowledge provides the categorized knowledge base behind the
// knowledge_search tool. Entries live in SQLite; the default ":memory:"
// DSN keeps the base process-resident, while a file DSN gives callers
// durability without code changes.
package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Known categories. Entries outside these are allowed but the router
// only ever infers one of the three.
const (
	CategoryProgramming = "programming"
	CategoryDesign      = "design"
	CategoryData        = "data"
)

// Entry is a single knowledge base record.
type Entry struct {
	ID       int64    `json:"id"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Topics   []string `json:"topics,omitempty"`
}

// Store is a SQLite-backed knowledge table.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS knowledge_entries (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL,
    title    TEXT NOT NULL,
    content  TEXT NOT NULL,
    topics   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_knowledge_category ON knowledge_entries(category);
`

// Open opens (and if needed creates) the knowledge store at the given
// DSN. With seed=true an empty table is populated with the built-in
// entries.
func Open(ctx context.Context, dsn string, seed bool) (*Store, error) {
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge db: %w", err)
	}
	// A single connection keeps in-memory databases coherent across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create knowledge schema: %w", err)
	}

	s := &Store{db: db}

	if seed {
		n, err := s.Count(ctx)
		if err != nil {
			db.Close()
			return nil, err
		}
		if n == 0 {
			if err := s.seedDefaults(ctx); err != nil {
				db.Close()
				return nil, err
			}
			log.Debug().Int("entries", len(defaultEntries)).Msg("knowledge base seeded")
		}
	}

	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count knowledge entries: %w", err)
	}
	return n, nil
}

// Insert stores a new entry and returns it with its assigned ID.
func (s *Store) Insert(ctx context.Context, e Entry) (Entry, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_entries (category, title, content, topics) VALUES (?, ?, ?, ?)`,
		e.Category, e.Title, e.Content, strings.Join(e.Topics, ","))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert knowledge entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	e.ID = id
	return e, nil
}

// ByCategory returns all entries in a category.
func (s *Store) ByCategory(ctx context.Context, category string) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, category, title, content, topics FROM knowledge_entries WHERE category = ? ORDER BY id`,
		category)
}

// All returns every entry across all categories.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, category, title, content, topics FROM knowledge_entries ORDER BY id`)
}

// Categories returns the distinct categories present in the store.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM knowledge_entries ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("knowledge query failed: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var topics string
		if err := rows.Scan(&e.ID, &e.Category, &e.Title, &e.Content, &topics); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge entry: %w", err)
		}
		if topics != "" {
			e.Topics = strings.Split(topics, ",")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) seedDefaults(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO knowledge_entries (category, title, content, topics) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare seed statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range defaultEntries {
		if _, err := stmt.ExecContext(ctx, e.Category, e.Title, e.Content, strings.Join(e.Topics, ",")); err != nil {
			return fmt.Errorf("failed to seed %q: %w", e.Title, err)
		}
	}
	return tx.Commit()
}
