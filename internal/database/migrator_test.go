package database

import (
	"testing"
	"testing/fstest"

	"billing-backend/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingOrdersAndSkips(t *testing.T) {
	files := fstest.MapFS{
		"003_c.sql":         {Data: []byte("SELECT 3;")},
		"001_a.sql":         {Data: []byte("SELECT 1;")},
		"002_b.sql":         {Data: []byte("SELECT 2;")},
		"999_reset_all.sql": {Data: []byte("DROP SCHEMA public;")},
		"README.md":         {Data: []byte("notes")},
	}

	pending, err := Pending(files, map[string]bool{"002_b.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "003_c.sql"}, pending)
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	pending, err := Pending(migrations.FS, nil)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, "001_initial_schema.sql", pending[0])
	assert.IsNonDecreasing(t, pending)
}
