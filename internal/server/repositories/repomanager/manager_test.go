package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rdb/internal/server/migrations"
	"github.com/dmitrijs2005/rdb/internal/server/repositories/mods"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew(t *testing.T) {
	m, err := New(DriverPostgres)
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)

	m, err = New(DriverSQLite)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepositoryManager{}, m)

	_, err = New("mongo")
	assert.Error(t, err)
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)

	var _ mods.Repository = (&PostgresRepositoryManager{}).Mods(db)
	var _ mods.Repository = (&SQLiteRepositoryManager{}).Mods(db)

	assert.IsType(t, &mods.PostgresRepository{}, (&PostgresRepositoryManager{}).Mods(db))
	assert.IsType(t, &mods.SQLiteRepository{}, (&SQLiteRepositoryManager{}).Mods(db))
}

func TestRunMigrations_UsesDialectDir(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var dirs []string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		dirs = append(dirs, dir)
		return nil
	}

	require.NoError(t, (&PostgresRepositoryManager{}).RunMigrations(context.Background(), db))
	require.NoError(t, (&SQLiteRepositoryManager{}).RunMigrations(context.Background(), db))
	assert.Equal(t, []string{migrations.PostgresDir, migrations.SQLiteDir}, dirs)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := (&PostgresRepositoryManager{}).RunMigrations(context.Background(), db)
	require.EqualError(t, err, "boom")
}

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "rdb.db"))
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	m, err := New(DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx, db))
	require.NoError(t, m.RunMigrations(ctx, db), "migrations are idempotent")

	n, err := m.Mods(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "x")
	assert.Error(t, err)

	orig := sqlOpen
	defer func() { sqlOpen = orig }()
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("no driver") }

	_, err = Open(context.Background(), DriverPostgres, "postgres://x")
	assert.ErrorContains(t, err, "no driver")
}
