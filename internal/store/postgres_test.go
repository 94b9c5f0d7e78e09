package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iskkyy/LNFRP/internal/db"
	"github.com/iskkyy/LNFRP/internal/model"
)

var itemRowColumns = []string{"id", "item_name", "category", "location", "description", "status", "date_found", "photo_key", "created_at"}

// newPostgresMock returns a Store speaking the PostgreSQL dialect to sqlmock.
func newPostgresMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		sqlDB.Close()
	})
	return New(db.Wrap(sqlDB, db.DialectPostgres)), mock
}

func TestPostgresListItems(t *testing.T) {
	s, mock := newPostgresMock(t)
	now := time.Now()

	rows := sqlmock.NewRows(itemRowColumns).
		AddRow(int64(2), "Phone", nil, "Gym", nil, "Found", now, "items/2/x.jpg", now).
		AddRow(int64(1), "Umbrella", "Accessories", nil, nil, "Lost", nil, nil, now)
	mock.ExpectQuery(`(?s)^SELECT id, item_name, .* FROM items ORDER BY id DESC$`).WillReturnRows(rows)

	items, err := s.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != 2 || items[0].Location != "Gym" || !items[0].HasPhoto || items[0].DateFound == nil {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Category != "Accessories" || items[1].DateFound != nil || items[1].HasPhoto {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}

func TestPostgresListItemsError(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`SELECT .* FROM items`).WillReturnError(errors.New("connection refused"))

	_, err := s.ListItems(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listing items") {
		t.Fatalf("expected wrapped listing error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("driver failure must not read as ErrNotFound")
	}
}

func TestPostgresCreateItemUsesNumberedPlaceholders(t *testing.T) {
	s, mock := newPostgresMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^INSERT INTO items \(item_name, category, location, description, status, date_found\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)\s+RETURNING id$`).
		WithArgs("Blue Backpack", "Bags", "Library", nil, "Lost", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectQuery(`FROM items WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow(int64(42), "Blue Backpack", "Bags", "Library", nil, "Lost", nil, nil, now))

	item, err := s.CreateItem(context.Background(), model.ItemFields{ItemName: "Blue Backpack", Category: "Bags", Location: "Library"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID != 42 || item.Status != model.ItemStatusLost {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestPostgresCreateItemDeletedBeforeRead(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(43)))
	mock.ExpectQuery(`FROM items WHERE id = \$1`).
		WithArgs(int64(43)).
		WillReturnRows(sqlmock.NewRows(itemRowColumns))

	_, err := s.CreateItem(context.Background(), model.ItemFields{ItemName: "Gloves"})
	if err == nil {
		t.Fatal("expected error when the created row vanished")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("a successful insert must not surface as ErrNotFound, got %v", err)
	}
}

func TestPostgresCreateItemConstraintViolation(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnError(&pgconn.PgError{Code: "23502", Message: "null value in column"})

	_, err := s.CreateItem(context.Background(), model.ItemFields{ItemName: "x"})
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Errorf("expected wrapped PgError, got %v", err)
	}
}

func TestPostgresUpdateItem(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(`(?s)^UPDATE items SET item_name = \$1, category = \$2, location = \$3, description = \$4, status = \$5, date_found = \$6\s+WHERE id = \$7$`).
		WithArgs("Keys", nil, "Lobby", nil, "Found", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	found := time.Now()
	err := s.UpdateItem(context.Background(), 7, model.ItemFields{ItemName: "Keys", Location: "Lobby", Status: "Found", DateFound: &found})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
}

func TestPostgresUpdateItemNotFound(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(`UPDATE items SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateItem(context.Background(), 99, model.ItemFields{ItemName: "Keys", Status: "Found"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresDeleteItem(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`^DELETE FROM items WHERE id = \$1 RETURNING photo_key$`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"photo_key"}).AddRow("items/5/p.jpg"))
	mock.ExpectQuery(`^DELETE FROM items WHERE id = \$1 RETURNING photo_key$`).
		WithArgs(int64(6)).
		WillReturnError(sql.ErrNoRows)

	key, err := s.DeleteItem(context.Background(), 5)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if key != "items/5/p.jpg" {
		t.Errorf("expected photo key items/5/p.jpg, got %q", key)
	}

	if _, err := s.DeleteItem(context.Background(), 6); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresSetItemPhotoLocksRow(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT photo_key FROM items WHERE id = \$1 FOR UPDATE$`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"photo_key"}).AddRow("items/8/old.jpg"))
	mock.ExpectExec(`^UPDATE items SET photo_key = \$1 WHERE id = \$2$`).
		WithArgs("items/8/new.jpg", int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	prev, err := s.SetItemPhoto(context.Background(), 8, "items/8/new.jpg")
	if err != nil {
		t.Fatalf("SetItemPhoto: %v", err)
	}
	if prev != "items/8/old.jpg" {
		t.Errorf("expected previous key items/8/old.jpg, got %q", prev)
	}
}

func TestPostgresSetItemPhotoNotFound(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE$`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"photo_key"}))
	mock.ExpectRollback()

	if _, err := s.SetItemPhoto(context.Background(), 9, "items/9/new.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresCreateUserDuplicate(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`^INSERT INTO users \(username, password_hash\) VALUES \(\$1, \$2\) RETURNING id$`).
		WithArgs("alice", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := s.CreateUser(context.Background(), "alice", "hash"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestPostgresRevokeToken(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(`^INSERT INTO revoked_tokens \(jti, expires_at\) VALUES \(\$1, \$2\) ON CONFLICT \(jti\) DO NOTHING$`).
		WithArgs("jti-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM revoked_tokens WHERE expires_at < \$1$`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.RevokeToken(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
}
