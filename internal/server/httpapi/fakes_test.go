package httpapi

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/rdb/internal/common"
	"github.com/dmitrijs2005/rdb/internal/logging"
	"github.com/dmitrijs2005/rdb/internal/server/models"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	got     []models.Submission
	outcome models.Outcome
	err     error
	panic   bool
}

func (f *fakeSubmitter) Submit(_ context.Context, raw models.Submission) (models.Outcome, error) {
	if f.panic {
		panic("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, raw)
	return f.outcome, f.err
}

func (f *fakeSubmitter) calls() []models.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Submission(nil), f.got...)
}

type fakeReader struct {
	entries map[string]*models.ModEntry
	list    []*models.ModEntry
	count   int64
	err     error

	lastQuery models.ListQuery
}

func (f *fakeReader) Get(_ context.Context, id string) (*models.ModEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (f *fakeReader) List(_ context.Context, q models.ListQuery) ([]*models.ModEntry, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeReader) Count(context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

func newTestServer(sub *fakeSubmitter, rd *fakeReader) *Server {
	if sub == nil {
		sub = &fakeSubmitter{}
	}
	if rd == nil {
		rd = &fakeReader{}
	}
	return NewServer("127.0.0.1:0", sub, rd, logging.Nop{})
}

func sampleEntry() *models.ModEntry {
	return &models.ModEntry{
		ID:        "alice/foo",
		Secret:    "S1",
		Search:    "ali alic alice foo",
		Published: 100,
		Updated:   200,
		Info: models.ModInfo{
			Version:     "1.0.0",
			Description: "d",
			Binaries:    []string{"https://drive.google.com/uc?export=download&id=abc"},
		},
	}
}
