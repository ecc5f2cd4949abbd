package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackendRevisions(t *testing.T) {
	b := openBackend(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()

	rev, err := b.CurrentRevision(ctx)
	require.NoError(t, err)
	assert.Zero(t, rev)

	r1, err := b.Set(ctx, "a", []byte(`1`))
	require.NoError(t, err)
	r2, err := b.Set(ctx, "b", []byte(`2`))
	require.NoError(t, err)
	r3, err := b.Set(ctx, "a", []byte(`3`))
	require.NoError(t, err)
	assert.Less(t, r1, r2)
	assert.Less(t, r2, r3)

	changes, err := b.ChangesSince(ctx, r1)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "b", changes[0].Key)
	assert.Equal(t, "a", changes[1].Key)
	assert.Equal(t, `3`, string(changes[1].Value))
}

func TestSQLiteBackendDeleteLeavesTombstone(t *testing.T) {
	b := openBackend(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()

	_, err := b.Set(ctx, "k", []byte(`"v"`))
	require.NoError(t, err)
	rev, err := b.Delete(ctx, "k")
	require.NoError(t, err)

	entry, found, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, rev, entry.Revision)

	changes, err := b.ChangesSince(ctx, rev-1)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].Value)
}

func TestSQLiteBackendMissingKey(t *testing.T) {
	b := openBackend(t, filepath.Join(t.TempDir(), "kv.db"))

	entry, found, err := b.Get(context.Background(), "nothing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, entry.Revision)
}
