package photos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iskkyy/LNFRP/internal/db"
)

func TestDBStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewDBStore(db.NewTestDB(t))

	key := NewKey(1)
	require.NoError(t, s.Put(ctx, key, []byte{0xff, 0xd8, 0x01}, "image/jpeg"))

	data, mime, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0x01}, data)
	assert.Equal(t, "image/jpeg", mime)

	require.NoError(t, s.Delete(ctx, key))
	_, _, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDBStorePutDuplicateKey(t *testing.T) {
	ctx := context.Background()
	s := NewDBStore(db.NewTestDB(t))

	require.NoError(t, s.Put(ctx, "items/2/a.jpg", []byte{1}, "image/jpeg"))
	assert.Error(t, s.Put(ctx, "items/2/a.jpg", []byte{2}, "image/jpeg"))

	data, _, err := s.Get(ctx, "items/2/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
}

func TestDBStoreDeleteMissing(t *testing.T) {
	s := NewDBStore(db.NewTestDB(t))
	assert.NoError(t, s.Delete(context.Background(), "items/9/missing.jpg"))
}

func TestNewKeyUnique(t *testing.T) {
	assert.NotEqual(t, NewKey(3), NewKey(3))
}
