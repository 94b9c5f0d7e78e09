package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iskkyy/LNFRP/internal/db"
)

// DBStore keeps photos in the item_photos table.
type DBStore struct {
	db *db.DB
}

// NewDBStore returns a Store backed by the given pool.
func NewDBStore(d *db.DB) *DBStore {
	return &DBStore{db: d}
}

// Put stores data under key, failing if the key is taken.
func (s *DBStore) Put(ctx context.Context, key string, data []byte, mime string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO item_photos (key, data, mime) VALUES (?, ?, ?)`,
		key, data, mime,
	)
	if err != nil {
		return fmt.Errorf("storing photo: %w", err)
	}
	return nil
}

// Get returns the photo bytes and MIME type, or ErrNotFound.
func (s *DBStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, mime FROM item_photos WHERE key = ?`, key,
	).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading photo: %w", err)
	}
	return data, mime, nil
}

// Delete removes the photo. A missing key is not an error.
func (s *DBStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM item_photos WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	return nil
}
