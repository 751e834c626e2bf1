package persistence

import (
	"fmt"
	"testing"

	"github.com/erp/treasury/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver string
		name   string
	}{
		{config.DriverPostgres, "postgres"},
		{"", "postgres"},
		{config.DriverMySQL, "mysql"},
		{config.DriverSQLite, "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Dialector(&config.DatabaseConfig{Driver: tt.driver, DBName: "treasury"})
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}

	_, err := Dialector(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DBName: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDatabase_SQLite(t *testing.T) {
	db := newSQLiteDatabase(t)

	require.NoError(t, db.Ping())
	require.NoError(t, db.AutoMigrate())
	assert.Equal(t, config.DriverSQLite, db.Driver)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestNewDatabase_TranslatesDuplicateKey(t *testing.T) {
	db := newSQLiteDatabase(t)
	require.NoError(t, db.AutoMigrate())

	type dup struct {
		Code string `gorm:"uniqueIndex"`
	}
	require.NoError(t, db.DB.AutoMigrate(&dup{}))
	require.NoError(t, db.DB.Create(&dup{Code: "A"}).Error)

	err := db.DB.Create(&dup{Code: "A"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
