package testsupport

import (
	"context"
	"testing"

	"qsomerge/internal/auditdb"
)

// MustOpenAudit opens an existing audit database and registers cleanup.
func MustOpenAudit(t testing.TB, path string) *auditdb.Store {
	t.Helper()

	store, err := auditdb.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("auditdb.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
