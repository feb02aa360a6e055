package artifact

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLocalPutOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "run-1/config.yaml", []byte("env_id: CartPole-v1\n")))

	r, err := s.Open(ctx, "run-1/config.yaml")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "env_id: CartPole-v1\n", string(data))
}

func TestLocalPutReplacesContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "a.txt", []byte("first")))
	require.NoError(t, s.Put(ctx, "a.txt", []byte("second")))

	r, err := s.Open(ctx, "a.txt")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalOpenMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Open(context.Background(), "missing.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "run-1/config.yaml", []byte("a")))
	require.NoError(t, s.Put(ctx, "run-1/history.csv", []byte("b")))
	require.NoError(t, s.Put(ctx, "run-2/config.yaml", []byte("c")))

	names, err := s.List(ctx, "run-1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1/config.yaml", "run-1/history.csv"}, names)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLocalDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "a.txt", []byte("x")))
	require.NoError(t, s.Delete(ctx, "a.txt"))
	require.NoError(t, s.Delete(ctx, "a.txt"))

	_, err := s.Open(ctx, "a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}
