// Package testdb opens throwaway in-memory databases for tests.
package testdb

import (
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

var (
	seq     atomic.Int64
	unsafeR = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

// Open returns a migrated, empty sqlite database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("%s_%d", unsafeR.ReplaceAllString(t.Name(), "_"), seq.Add(1))
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, migration.New(db, nil).Run())
	return db
}

// Seeded returns a database holding the demo catalog, accounts and orders.
func Seeded(t testing.TB) *gorm.DB {
	t.Helper()

	db := Open(t)
	require.NoError(t, seeders.RunAll(db, nil))
	return db
}
