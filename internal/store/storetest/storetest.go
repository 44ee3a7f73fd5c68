// Package storetest builds throwaway stores for tests.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/db"
	"libraryhub/internal/store"
)

// Empty returns a migrated, empty in-memory store private to t.
func Empty(t testing.TB) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	s, err := store.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Seeded returns a store private to t loaded with the demo data.
func Seeded(t testing.TB) *store.Store {
	t.Helper()
	s := Empty(t)
	_, err := s.Seed(context.Background(), store.DemoData())
	require.NoError(t, err)
	return s
}
