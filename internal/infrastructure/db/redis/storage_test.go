package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, ttl time.Duration) (*ClientStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewClientStorage(client, ttl), mr
}

func TestClientStorage_SaveLoadClear(t *testing.T) {
	s, mr := newTestStorage(t, 0)
	ctx := context.Background()

	blob, err := s.Load(ctx, "c1", "session")
	require.NoError(t, err)
	require.Nil(t, blob)

	require.NoError(t, s.Save(ctx, "c1", "session", []byte(`{"id":"a"}`)))
	require.NoError(t, s.Save(ctx, "c1", "mk_tasks", []byte(`[]`)))
	require.NoError(t, s.Save(ctx, "c2", "session", []byte(`{"id":"b"}`)))
	require.NoError(t, s.Save(ctx, "c1", "session", []byte(`{"id":"c"}`)))

	blob, err = s.Load(ctx, "c1", "session")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"c"}`, string(blob))
	require.Equal(t, "[]", mr.HGet("taskdesk:client:c1", "mk_tasks"))

	require.NoError(t, s.Clear(ctx, "c1"))
	require.False(t, mr.Exists("taskdesk:client:c1"))

	blob, err = s.Load(ctx, "c2", "session")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"b"}`, string(blob))
	require.NoError(t, s.Ping(ctx))
}

func TestClientStorage_TTL(t *testing.T) {
	s, mr := newTestStorage(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "c1", "session", []byte(`{}`)))
	require.Equal(t, time.Hour, mr.TTL("taskdesk:client:c1"))

	mr.FastForward(2 * time.Hour)
	blob, err := s.Load(ctx, "c1", "session")
	require.NoError(t, err)
	require.Nil(t, blob)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := Open(context.Background(), Config{Addr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())

	mr.Close()
	_, err = Open(context.Background(), Config{Addr: mr.Addr(), Timeout: 100 * time.Millisecond})
	require.Error(t, err)
}
