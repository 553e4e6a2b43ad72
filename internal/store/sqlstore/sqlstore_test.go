// AngelaMos | 2026
// sqlstore_test.go

package sqlstore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/currency-tracker/internal/config"
	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/store"
	"github.com/carterperez-dev/currency-tracker/internal/store/sqlstore"
	"github.com/carterperez-dev/currency-tracker/internal/store/storetest"
)

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    fmt.Sprintf("file:%s/test.db", t.TempDir()),
	})
	require.NoError(t, err)
	require.NoError(t, core.Migrate(ctx, db))

	return sqlstore.New(db)
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, newSQLiteStore)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    fmt.Sprintf("file:%s/test.db", t.TempDir()),
	})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, core.Migrate(ctx, db))
	require.NoError(t, core.Migrate(ctx, db))
}

func migratedSQLite(t *testing.T) *core.Database {
	t.Helper()

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    fmt.Sprintf("file:%s/test.db", t.TempDir()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, core.Migrate(ctx, db))

	return db
}

func TestSQLiteCurrencyChecks(t *testing.T) {
	db := migratedSQLite(t)
	ctx := context.Background()

	const insert = `INSERT INTO currency (num_code, char_code, name, value, nominal)
		VALUES (?, ?, 'Тестовая валюта', 1.5, 1)`

	tests := []struct {
		name     string
		numCode  string
		charCode string
		valid    bool
	}{
		{"valid", "840", "USD", true},
		{"letters in num code", "abc", "AUD", false},
		{"short num code", "84", "CAD", false},
		{"digit in char code", "036", "US1", false},
		{"lower case char code", "036", "aud", false},
		{"long char code", "036", "AUDX", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.DB.ExecContext(ctx, insert, tt.numCode, tt.charCode)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestSQLiteAppVersionCheck(t *testing.T) {
	db := migratedSQLite(t)
	ctx := context.Background()

	res, err := db.DB.ExecContext(ctx,
		`INSERT INTO author (name, group_name) VALUES ('Иван Иванов', 'ПИ-202')`)
	require.NoError(t, err)
	authorID, err := res.LastInsertId()
	require.NoError(t, err)

	const insert = `INSERT INTO app (name, version, author_id) VALUES ('Currency Tracker', ?, ?)`

	for _, version := range []string{"1.0.0", "12.345.6"} {
		_, err := db.DB.ExecContext(ctx, insert, version, authorID)
		assert.NoError(t, err, version)
	}

	for _, version := range []string{"1a.2.3", "1.2", "1.2.3.4", "1.2.x", "v1.2.3", "1..2.3"} {
		_, err := db.DB.ExecContext(ctx, insert, version, authorID)
		assert.Error(t, err, version)
	}
}
