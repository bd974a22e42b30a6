package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const pairingSchema = `
CREATE TABLE IF NOT EXISTS pairings (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id   TEXT NOT NULL,
	app_name  TEXT NOT NULL
);
`

// SQLiteStore is the embedded-database Registry, interchangeable with the
// flat-file store behind the same interface. Insertion order is preserved
// through the rowid so LoadAllAppNames matches the file store's ordering.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes mutations
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry db: %w", err)
	}

	if _, err := db.Exec(pairingSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init registry schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) IsRegistered(ctx context.Context, appName string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM pairings WHERE app_name = ?`, appName).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query pairing by app: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Append(ctx context.Context, cardID, appName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pairings (card_id, app_name) VALUES (?, ?)`, cardID, appName)
	if err != nil {
		return fmt.Errorf("failed to insert pairing: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveByAppName(ctx context.Context, appName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pairings WHERE app_name = ?`, appName)
	if err != nil {
		return false, fmt.Errorf("failed to delete pairing: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) FindCardFor(ctx context.Context, appName string) (string, bool, error) {
	var cardID string
	err := s.db.QueryRowContext(ctx,
		`SELECT card_id FROM pairings WHERE app_name = ? ORDER BY id LIMIT 1`, appName).Scan(&cardID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query card for app: %w", err)
	}
	return cardID, true, nil
}

func (s *SQLiteStore) IsCardRegistered(ctx context.Context, cardID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM pairings WHERE card_id = ?`, cardID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query pairing by card: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) LoadAllAppNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT app_name FROM pairings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load app names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan app name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate app names: %w", err)
	}

	return names, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
