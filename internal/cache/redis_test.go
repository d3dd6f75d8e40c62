package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client), mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStoreDisabled(t *testing.T) {
	s := &Store{}

	assert.False(t, s.Enabled())
	assert.NoError(t, s.SetJSON(context.Background(), "k", payload{}, time.Minute))

	var dest payload
	found, err := s.GetJSON(context.Background(), "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)

	// Aside still reaches the fetch function.
	called := false
	err = s.Aside(context.Background(), "k", &dest, time.Minute, func() error {
		called = true
		dest = payload{Name: "fresh"}
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "fresh", dest.Name)
}

func TestGetSetJSON(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetJSON(ctx, "k", payload{Name: "a", Count: 2}, time.Minute))

	var dest payload
	found, err := s.GetJSON(ctx, "k", &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "a", Count: 2}, dest)

	mr.FastForward(2 * time.Minute)
	found, err = s.GetJSON(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "db", Count: calls}
			return nil
		}
	}

	var first payload
	require.NoError(t, s.Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, first.Count)

	// Second read is served from cache without another fetch.
	var second payload
	require.NoError(t, s.Aside(ctx, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	// After expiry the fetch runs again.
	mr.FastForward(2 * time.Minute)
	var third payload
	require.NoError(t, s.Aside(ctx, "k", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAsideFetchError(t *testing.T) {
	s, _ := newTestStore(t)

	wantErr := errors.New("db down")
	var dest payload
	err := s.Aside(context.Background(), "k", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// Nothing was cached.
	found, err := s.GetJSON(context.Background(), "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidatePrefix(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetJSON(ctx, ReviewPageKey(1, 10), payload{Name: "p1"}, time.Minute))
	require.NoError(t, s.SetJSON(ctx, ReviewPageKey(2, 10), payload{Name: "p2"}, time.Minute))
	require.NoError(t, s.SetJSON(ctx, UserKey(7), payload{Name: "u"}, time.Minute))

	s.InvalidatePrefix(ctx, ReviewPagePrefix)

	assert.False(t, mr.Exists(ReviewPageKey(1, 10)))
	assert.False(t, mr.Exists(ReviewPageKey(2, 10)))
	assert.True(t, mr.Exists(UserKey(7)))
}
