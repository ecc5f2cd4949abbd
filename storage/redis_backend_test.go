package storage

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/cashngo/gig"
)

func TestParseAnnouncement(t *testing.T) {
	tests := []struct {
		payload string
		key     string
		ok      bool
	}{
		{"12:cashngo_postedGigs", "cashngo_postedGigs", true},
		{"3:a:b", "a:b", true},
		{"cashngo_postedGigs", "", false},
		{"x:key", "", false},
		{"4:", "", false},
	}
	for _, tt := range tests {
		key, ok := parseAnnouncement(tt.payload)
		assert.Equal(t, tt.ok, ok, tt.payload)
		assert.Equal(t, tt.key, key, tt.payload)
	}
}

func TestParseRevision(t *testing.T) {
	rev, err := parseRevision("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), rev)

	rev, err = parseRevision(nil)
	require.NoError(t, err)
	assert.Zero(t, rev)

	_, err = parseRevision("forty-two")
	assert.Error(t, err)
	_, err = parseRevision(int64(1))
	assert.Error(t, err)
}

// Needs a live server: CASHNGO_TEST_REDIS_ADDR=localhost:6379
func redisBackend(t *testing.T, prefix string) *RedisBackend {
	t.Helper()
	addr := os.Getenv("CASHNGO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CASHNGO_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	b := NewRedisBackendWithClient(client, prefix, prefix+"changes")
	t.Cleanup(func() { b.Close() })
	return b
}

func TestRedisBackendRoundTrip(t *testing.T) {
	prefix := "cashngo_test_" + gig.NewID() + ":"
	b := redisBackend(t, prefix)
	ctx := context.Background()

	r1, err := b.Set(ctx, "k", []byte(`[1]`))
	require.NoError(t, err)
	entry, found, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[1]`, string(entry.Value))
	assert.Equal(t, r1, entry.Revision)

	r2, err := b.Delete(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, r2, r1)
	_, found, err = b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisBackendCorruptRevisionIsReadError(t *testing.T) {
	prefix := "cashngo_test_" + gig.NewID() + ":"
	b := redisBackend(t, prefix)
	ctx := context.Background()

	require.NoError(t, b.client.HSet(ctx, b.entryKey("k"), "value", `[1]`, "revision", "garbage").Err())
	t.Cleanup(func() { b.client.Del(context.Background(), b.entryKey("k")) })

	_, _, err := b.Get(ctx, "k")
	assert.Error(t, err)
}

func TestRedisFeedSyncsStores(t *testing.T) {
	prefix := "cashngo_test_" + gig.NewID() + ":"
	writerBackend := redisBackend(t, prefix)
	readerBackend := redisBackend(t, prefix)
	ctx := context.Background()

	reader := NewStore(readerBackend, testPrefix)
	watcher := NewWatcher(reader, readerBackend)
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()
	// Let the subscription settle
	time.Sleep(100 * time.Millisecond)

	var mu sync.Mutex
	var got bool
	NewCollections(reader).GuideShown.Subscribe(func(v bool) {
		mu.Lock()
		got = v
		mu.Unlock()
	})

	NewCollections(NewStore(writerBackend, testPrefix)).GuideShown.Write(ctx, true)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got
	}, 3*time.Second, 10*time.Millisecond)
}
