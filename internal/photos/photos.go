// Package photos stores item photo blobs in the database or an S3 bucket.
package photos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no blob exists under a key.
var ErrNotFound = errors.New("photo not found")

// Store is a blob store for item photos.
type Store interface {
	Put(ctx context.Context, key string, data []byte, mime string) error
	// Get returns the blob and its content type.
	Get(ctx context.Context, key string) ([]byte, string, error)
	// Delete removes a blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh object key for a photo of the given item.
func NewKey(itemID int64) string {
	return fmt.Sprintf("items/%d/%s.jpg", itemID, uuid.New())
}
