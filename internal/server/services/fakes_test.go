package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rdb/internal/dbx"
	"github.com/dmitrijs2005/rdb/internal/server/models"
	"github.com/dmitrijs2005/rdb/internal/server/repositories/mods"
	"github.com/dmitrijs2005/rdb/internal/server/repositories/repomanager"
)

// -------- test fakes --------

type fakeModsRepo struct {
	mods.Repository

	mu        sync.Mutex
	upserted  []*models.ModEntry
	upsertOut models.Outcome
	upsertErr error

	entries  map[string]*models.ModEntry
	getCalls int
	getErr   error

	count      int64
	countCalls int
	countErr   error

	listQuery models.ListQuery
}

func (f *fakeModsRepo) Upsert(ctx context.Context, e *models.ModEntry) (models.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append(f.upserted, e)
	return f.upsertOut, nil
}

func (f *fakeModsRepo) Get(ctx context.Context, id string) (*models.ModEntry, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[id], nil
}

func (f *fakeModsRepo) Count(ctx context.Context) (int64, error) {
	f.countCalls++
	return f.count, f.countErr
}

func (f *fakeModsRepo) List(ctx context.Context, q models.ListQuery) ([]*models.ModEntry, error) {
	f.listQuery = q
	out := make([]*models.ModEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

type fakeManager struct {
	repomanager.RepositoryManager
	repo *fakeModsRepo
}

func (m *fakeManager) Mods(db dbx.DBTX) mods.Repository {
	return m.repo
}

type recordingHook struct {
	mu    sync.Mutex
	calls []models.Outcome
	ids   []string
}

func (h *recordingHook) AfterWrite(ctx context.Context, entry *models.ModEntry, outcome models.Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, outcome)
	h.ids = append(h.ids, entry.ID)
}

// -------- helpers --------

func validSubmission() models.Submission {
	return models.Submission{
		Name:        "foo",
		Owner:       "alice",
		Secret:      "S1",
		Description: "A mod.",
		Version:     "v1.0.0",
		Icon:        "https://raw.githubusercontent.com/alice/foo/v1.0.0/icon.png",
		Binaries:    []string{"https://drive.google.com/file/d/ABC123/view?usp=sharing"},
	}
}

func openSQLite(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	db, err := repomanager.Open(ctx, repomanager.DriverSQLite, filepath.Join(t.TempDir(), "rdb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := repomanager.New(repomanager.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx, db))
	return db, m
}
