package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "socialSupportFormData")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Put(ctx, "socialSupportFormData", []byte(`{"currentStep":2}`)))
	got, err := b.Get(ctx, "socialSupportFormData")
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentStep":2}`, string(got))

	require.NoError(t, b.Put(ctx, "socialSupportFormData", []byte(`{"currentStep":3}`)))
	got, err = b.Get(ctx, "socialSupportFormData")
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentStep":3}`, string(got))

	require.NoError(t, b.Delete(ctx, "socialSupportFormData"))
	_, err = b.Get(ctx, "socialSupportFormData")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, b.Delete(ctx, "never-written"))
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drafts")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	exerciseBackend(t, b)

	require.NoError(t, b.Put(context.Background(), "a/b", []byte("{}")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a%2Fb.json", entries[0].Name())
}

func TestRedisBackend_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseBackend(t, NewRedisBackend(client, "wizard:draft:", 0))

	b := NewRedisBackend(client, "wizard:draft:", time.Hour)
	require.NoError(t, b.Put(context.Background(), "k", []byte("{}")))
	assert.True(t, mr.Exists("wizard:draft:k"))
	assert.Equal(t, time.Hour, mr.TTL("wizard:draft:k"))
}

func TestRedisBackend_Mock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	b := NewRedisBackend(db, "p:", 0)
	ctx := context.Background()

	mock.ExpectGet("p:missing").RedisNil()
	_, err := b.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectGet("p:broken").SetErr(errors.New("connection reset by peer"))
	_, err = b.Get(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectDel("p:k").SetVal(1)
	assert.NoError(t, b.Delete(ctx, "k"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
