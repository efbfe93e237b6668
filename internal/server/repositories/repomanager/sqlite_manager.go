package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/rdb/internal/dbx"
	"github.com/dmitrijs2005/rdb/internal/server/migrations"
	"github.com/dmitrijs2005/rdb/internal/server/repositories/mods"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct{}

// Mods returns a mods.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Mods(db dbx.DBTX) mods.Repository {
	return mods.NewSQLiteRepository(db)
}

// RunMigrations applies the embedded SQLite migrations.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.SQLiteDir)
}
