package testing

import (
	"testing"

	"github.com/teranos/cashngo/storage"
)

// TestKeyPrefix namespaces keys in test stores
const TestKeyPrefix = "cashngo_"

// CreateTestStore creates a store over a fresh SQLite file
func CreateTestStore(t *testing.T) *storage.Store {
	t.Helper()
	conn, _ := CreateTestDB(t)
	return storage.NewStore(storage.NewSQLiteBackend(conn), TestKeyPrefix)
}

// CreateTestCollections creates the persisted collections over a fresh store
func CreateTestCollections(t *testing.T) *storage.Collections {
	t.Helper()
	return storage.NewCollections(CreateTestStore(t))
}
