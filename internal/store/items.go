package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iskkyy/LNFRP/internal/db"
	"github.com/iskkyy/LNFRP/internal/model"
)

const itemColumns = `id, item_name, category, location, description, status, date_found, photo_key, created_at`

// ListItems returns every item, most recently inserted first.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, _, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// GetItem returns an item by ID.
func (s *Store) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, _, err := getItem(ctx, s.db, id)
	return item, err
}

// CreateItem inserts a new item and returns it with its generated ID.
// An empty status is stored as Lost.
func (s *Store) CreateItem(ctx context.Context, f model.ItemFields) (*model.Item, error) {
	status := f.Status
	if status == "" {
		status = model.ItemStatusLost
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO items (item_name, category, location, description, status, date_found)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		f.ItemName, nullString(f.Category), nullString(f.Location), nullString(f.Description),
		status, nullTime(f.DateFound),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	item, err := s.GetItem(ctx, id)
	if errors.Is(err, ErrNotFound) {
		// Deleted between the insert and the read; the insert itself succeeded.
		return nil, fmt.Errorf("reading created item %d: row removed concurrently", id)
	}
	return item, err
}

// UpdateItem overwrites every mutable column of the item.
// It returns ErrNotFound when no row has the given ID.
func (s *Store) UpdateItem(ctx context.Context, id int64, f model.ItemFields) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET item_name = ?, category = ?, location = ?, description = ?, status = ?, date_found = ?
		 WHERE id = ?`,
		f.ItemName, nullString(f.Category), nullString(f.Location), nullString(f.Description),
		f.Status, nullTime(f.DateFound), id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return expectAffected(result)
}

// DeleteItem removes the item and returns the key of its photo, if any.
// It returns ErrNotFound when no row has the given ID.
func (s *Store) DeleteItem(ctx context.Context, id int64) (string, error) {
	var photoKey sql.NullString
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM items WHERE id = ? RETURNING photo_key`, id,
	).Scan(&photoKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("deleting item: %w", err)
	}
	return photoKey.String, nil
}

// ItemPhotoKey returns the storage key of the item's photo, or "" if it has none.
func (s *Store) ItemPhotoKey(ctx context.Context, id int64) (string, error) {
	_, key, err := getItem(ctx, s.db, id)
	return key, err
}

// SetItemPhoto points the item at a new photo key and returns the previous one.
// On PostgreSQL the row is locked so concurrent swaps each see the key they replace.
func (s *Store) SetItemPhoto(ctx context.Context, id int64, key string) (string, error) {
	lock := ""
	if s.db.Dialect == db.DialectPostgres {
		lock = " FOR UPDATE"
	}

	var previous sql.NullString
	err := s.db.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		err := q.QueryRowContext(ctx,
			`SELECT photo_key FROM items WHERE id = ?`+lock, id,
		).Scan(&previous)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("locking item: %w", err)
		}

		result, err := q.ExecContext(ctx,
			`UPDATE items SET photo_key = ? WHERE id = ?`, nullString(key), id,
		)
		if err != nil {
			return fmt.Errorf("setting item photo: %w", err)
		}
		return expectAffected(result)
	})
	if err != nil {
		return "", err
	}
	return previous.String, nil
}

func getItem(ctx context.Context, q db.Querier, id int64) (*model.Item, string, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, key, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item: %w", err)
	}
	return item, key, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (*model.Item, string, error) {
	var (
		item                            model.Item
		category, location, description sql.NullString
		photoKey                        sql.NullString
		dateFound                       sql.NullTime
	)
	err := sc.Scan(&item.ID, &item.ItemName, &category, &location, &description,
		&item.Status, &dateFound, &photoKey, &item.CreatedAt)
	if err != nil {
		return nil, "", err
	}
	item.Category = category.String
	item.Location = location.String
	item.Description = description.String
	if dateFound.Valid {
		t := dateFound.Time
		item.DateFound = &t
	}
	item.HasPhoto = photoKey.String != ""
	return &item, photoKey.String, nil
}

func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
