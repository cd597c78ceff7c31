// Package orderstore persists ordered lists in SQLite.
package orderstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/idwrap"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
)

var (
	ErrListNotFound = errors.New("list not found")
	ErrItemNotFound = errors.New("item not found")
	ErrDuplicateKey = errors.New("duplicate item id")
)

const schema = `
CREATE TABLE IF NOT EXISTS ordered_lists (
	id         BLOB PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ordered_items (
	list_id  BLOB NOT NULL REFERENCES ordered_lists(id) ON DELETE CASCADE,
	item_id  TEXT NOT NULL,
	position INTEGER,
	PRIMARY KEY (list_id, item_id)
);
CREATE INDEX IF NOT EXISTS ordered_items_position ON ordered_items(list_id, position);
`

// List is an ordered list header.
type List struct {
	ID        idwrap.IDWrap
	Name      string
	CreatedAt time.Time
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	q  querier
}

func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Open opens the SQLite database at dsn and creates the schema. Use
// ":memory:" for a throwaway store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// TX returns a store whose queries run inside tx.
func (s *Store) TX(tx *sql.Tx) *Store {
	return &Store{db: s.db, q: tx}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Tx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Store) CreateList(ctx context.Context, name string) (List, error) {
	list := List{ID: idwrap.NewNow(), Name: name}
	list.CreatedAt = list.ID.Time()
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO ordered_lists (id, name, created_at) VALUES (?, ?, ?)",
		list.ID, list.Name, list.CreatedAt.UnixMilli())
	if err != nil {
		return List{}, fmt.Errorf("failed to create list: %w", err)
	}
	return list, nil
}

func (s *Store) GetList(ctx context.Context, listID idwrap.IDWrap) (List, error) {
	var (
		list      List
		createdAt int64
	)
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM ordered_lists WHERE id = ?", listID,
	).Scan(&list.ID, &list.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if err != nil {
		return List{}, fmt.Errorf("failed to get list: %w", err)
	}
	list.CreatedAt = time.UnixMilli(createdAt)
	return list, nil
}

func (s *Store) Lists(ctx context.Context) ([]List, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id, name, created_at FROM ordered_lists ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []List
	for rows.Next() {
		var (
			list      List
			createdAt int64
		)
		if err := rows.Scan(&list.ID, &list.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		list.CreatedAt = time.UnixMilli(createdAt)
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

func (s *Store) DeleteList(ctx context.Context, listID idwrap.IDWrap) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM ordered_lists WHERE id = ?", listID)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	return nil
}

// Insert adds items to a list. Items without an order are stored with a NULL
// position and picked up by the next repair.
func (s *Store) Insert(ctx context.Context, listID idwrap.IDWrap, items []ordering.Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, item.ID)
		}
		seen[item.ID] = struct{}{}

		_, err := s.q.ExecContext(ctx,
			"INSERT INTO ordered_items (list_id, item_id, position) VALUES (?, ?, ?)",
			listID, item.ID, nullablePosition(item))
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
	}
	return nil
}

// Items returns the items of a list ordered by position, unordered items last.
func (s *Store) Items(ctx context.Context, listID idwrap.IDWrap) ([]ordering.Item, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT item_id, position FROM ordered_items WHERE list_id = ? ORDER BY position IS NULL, position, item_id",
		listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []ordering.Item{}
	for rows.Next() {
		var (
			item     ordering.Item
			position sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &position); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if position.Valid {
			p := int(position.Int64)
			item.Order = &p
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdatePositions writes the order of every item. It must run inside tx so a
// failure leaves the list untouched.
func (s *Store) UpdatePositions(ctx context.Context, tx *sql.Tx, listID idwrap.IDWrap, items []ordering.Item) error {
	repo := s
	if tx != nil {
		repo = s.TX(tx)
	}
	for _, item := range items {
		res, err := repo.q.ExecContext(ctx,
			"UPDATE ordered_items SET position = ? WHERE list_id = ? AND item_id = ?",
			nullablePosition(item), listID, item.ID)
		if err != nil {
			return fmt.Errorf("failed to update position of %s: %w", item.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
		}
	}
	return nil
}

func nullablePosition(item ordering.Item) sql.NullInt64 {
	if item.Order == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*item.Order), Valid: true}
}
