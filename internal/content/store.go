// Package content stores content items and the scripture citations found in
// them in a SQLite database.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stronganchortech/bible-linker/internal/reference"
)

var (
	ErrNotFound  = errors.New("content item not found")
	ErrMissingID = errors.New("content item id is required")
)

// Item is one piece of stored content, such as a post or a page.
type Item struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Updated time.Time `json:"updated"`
}

// Citation records that an item links a reference.
type Citation struct {
	ItemID  string `json:"item_id"`
	Display string `json:"display"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, id string) (Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, title, body, updated_at FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// Put inserts or updates an item. A zero Updated time is set to now.
func (s *Store) Put(ctx context.Context, item Item) error {
	if item.ID == "" {
		return ErrMissingID
	}
	if item.Updated.IsZero() {
		item.Updated = s.now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO items (id, type, title, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			type = excluded.type,
			title = excluded.title,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		item.ID, item.Type, item.Title, item.Body, item.Updated.UnixMilli())
	if err != nil {
		return fmt.Errorf("put item %s: %w", item.ID, err)
	}
	return nil
}

// List returns items of contentType, or of every type when it is empty,
// most recently updated first.
func (s *Store) List(ctx context.Context, contentType string, limit, offset int) ([]Item, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, type, title, body, updated_at FROM items`
	var args []any
	if contentType != "" {
		query += ` WHERE type = ?`
		args = append(args, contentType)
	}
	query += ` ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// SetCitations replaces the citations recorded for an item.
func (s *Store) SetCitations(ctx context.Context, itemID string, refs []reference.Canonical) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM citations WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clear citations for %s: %w", itemID, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO citations (item_id, display, book, chapter) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, ref := range refs {
		if _, err := stmt.ExecContext(ctx, itemID, ref.Display, ref.Book, ref.Chapter); err != nil {
			return fmt.Errorf("insert citation %s: %w", ref.Display, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit citations: %w", err)
	}
	return nil
}

// Citations returns the references recorded for one item.
func (s *Store) Citations(ctx context.Context, itemID string) ([]Citation, error) {
	return s.queryCitations(ctx,
		`SELECT item_id, display, book, chapter FROM citations WHERE item_id = ? ORDER BY book, chapter, display`,
		itemID)
}

// ReferencesFor returns every citation of the book with the given
// canonical name, ordered by chapter.
func (s *Store) ReferencesFor(ctx context.Context, book string) ([]Citation, error) {
	return s.queryCitations(ctx,
		`SELECT item_id, display, book, chapter FROM citations WHERE book = ? ORDER BY chapter, display, item_id`,
		book)
}

func (s *Store) queryCitations(ctx context.Context, query string, args ...any) ([]Citation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query citations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]Citation, 0)
	for rows.Next() {
		var c Citation
		if err := rows.Scan(&c.ItemID, &c.Display, &c.Book, &c.Chapter); err != nil {
			return nil, fmt.Errorf("scan citation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate citations: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var item Item
	var updated int64
	if err := row.Scan(&item.ID, &item.Type, &item.Title, &item.Body, &updated); err != nil {
		return Item{}, err
	}
	item.Updated = time.UnixMilli(updated).UTC()
	return item, nil
}
