package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/erp/treasury/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add owned check clearing", "add_owned_check_clearing"},
		{"Add-Bank-Fees", "add_bank_fees"},
		{"add__cash__index", "add_cash_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "postgres"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "postgres", "000004_cashflow.up.sql"), nil, 0o644))

	files, err := CreateMigration(root, []string{"postgres", "mysql"}, "add check clearing", "Track cleared checks")
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, mf := range files {
		assert.Equal(t, "000005", mf.Version, "next version is shared across drivers")
		assert.Equal(t, filepath.Join(root, mf.Driver, "000005_add_check_clearing.up.sql"), mf.UpPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add check clearing ("+mf.Driver+")")
		assert.Contains(t, string(up), "Track cleared checks")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "rollback")
	}

	again, err := CreateMigration(root, []string{"postgres", "mysql"}, "second", "")
	require.NoError(t, err)
	assert.Equal(t, "000006", again[0].Version)
}

func TestCreateMigration_EmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), []string{"postgres"}, "!!!", "")
	require.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"postgres/000002_b.up.sql":   {},
		"postgres/000002_b.down.sql": {},
		"postgres/000001_a.up.sql":   {},
		"postgres/000001_a.down.sql": {},
		"postgres/README.md":         {},
	}
	names, err := ListMigrations(fsys, "postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a", "000002_b"}, names)

	names, err = ListMigrations(fsys, "mysql")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedSchemasStayAligned(t *testing.T) {
	pg, err := ListMigrations(migrations.FS, "postgres")
	require.NoError(t, err)
	my, err := ListMigrations(migrations.FS, "mysql")
	require.NoError(t, err)

	require.NotEmpty(t, pg)
	assert.Equal(t, pg, my)

	for _, name := range pg {
		for _, dir := range []string{"postgres", "mysql"} {
			_, err := migrations.FS.Open(dir + "/" + name + ".down.sql")
			assert.NoError(t, err, "%s/%s has no down script", dir, name)
		}
	}
}
