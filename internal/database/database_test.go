package database_test

import (
	"fmt"
	"testing"

	"pharmacy/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigratePing(t *testing.T) {
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	assert.NoError(t, database.Ping(db))

	for _, table := range []string{"products", "users", "carts", "orders", "prescriptions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := database.Open("oracle", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}
