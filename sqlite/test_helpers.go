package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// NewTestStore returns an in-memory store with the schema applied,
// closed automatically when the test finishes.
func NewTestStore(t *testing.T) *SqlStore {
	t.Helper()

	store, err := NewSqlStore(InmemPath, zaptest.NewLogger(t))
	require.NoError(t, err, "unable to open testing database")
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.InitSchema(context.Background()), "unable to initialize schema")

	return store
}
