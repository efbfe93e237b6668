package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rdb/internal/common"
	"github.com/dmitrijs2005/rdb/internal/server/github"
	"github.com/dmitrijs2005/rdb/internal/server/models"
)

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	h := newTestServer(nil, nil).Handler()

	rec := do(t, h, http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "GET /mods/count")
	assert.Contains(t, rec.Body.String(), "POST /github?secret=<secret>")
}

func TestOneMod(t *testing.T) {
	rd := &fakeReader{entries: map[string]*models.ModEntry{"alice/foo": sampleEntry()}}
	h := newTestServer(nil, rd).Handler()

	rec := do(t, h, http.MethodGet, "/mods/alice/foo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "foo", got["name"])
	assert.Equal(t, "alice", got["owner"])
	assert.Equal(t, "1.0.0", got["version"])
	assert.EqualValues(t, 0, got["downloads"])
	assert.NotContains(t, got, "secret")
	assert.NotContains(t, rec.Body.String(), "S1")
}

func TestOneMod_NotFound(t *testing.T) {
	h := newTestServer(nil, &fakeReader{}).Handler()

	rec := do(t, h, http.MethodGet, "/mods/alice/missing", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOneMod_BackendError(t *testing.T) {
	h := newTestServer(nil, &fakeReader{err: errors.New("db down")}).Handler()

	rec := do(t, h, http.MethodGet, "/mods/alice/foo", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, common.MessageInternal, rec.Body.String())
}

func TestManyMods(t *testing.T) {
	rd := &fakeReader{list: []*models.ModEntry{sampleEntry()}}
	h := newTestServer(nil, rd).Handler()

	rec := do(t, h, http.MethodGet, "/mods?page=2&sort=top&search=Foo%20bar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.PublicMod
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "foo", got[0].Name)

	assert.Equal(t, 2, rd.lastQuery.Page)
	assert.Equal(t, models.SortMostDownloads, rd.lastQuery.Sort)
	assert.Equal(t, []string{"foo", "bar"}, rd.lastQuery.Search)
}

func TestManyMods_EmptyIsArray(t *testing.T) {
	rd := &fakeReader{}
	h := newTestServer(nil, rd).Handler()

	rec := do(t, h, http.MethodGet, "/mods/", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, 0, rd.lastQuery.Page)
	assert.Equal(t, models.SortNew, rd.lastQuery.Sort)
}

func TestManyMods_BadQuery(t *testing.T) {
	h := newTestServer(nil, &fakeReader{}).Handler()

	overflow := "/mods?page=" + strconv.Itoa(models.MaxPage+1)
	for _, target := range []string{"/mods?page=x", "/mods?page=-1", "/mods?sort=random", overflow} {
		t.Run(target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, target, "", nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCountMods(t *testing.T) {
	h := newTestServer(nil, &fakeReader{count: 42}).Handler()

	rec := do(t, h, http.MethodGet, "/mods/count", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42\n", rec.Body.String())
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name       string
		outcome    models.Outcome
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "created", outcome: models.OutcomeCreated, wantStatus: http.StatusOK, wantBody: "Successfully inserted mod."},
		{name: "updated", outcome: models.OutcomeUpdated, wantStatus: http.StatusOK, wantBody: "Successfully updated mod."},
		{name: "validation", err: common.Validation("Version must be a valid semver."), wantStatus: http.StatusBadRequest, wantBody: "Version must be a valid semver."},
		{name: "authorization", err: common.Authorization(), wantStatus: http.StatusBadRequest, wantBody: common.MessageSecretIncorrect},
		{name: "stale", err: common.StaleVersion(), wantStatus: http.StatusBadRequest, wantBody: common.MessageVersionOutdated},
		{name: "backend", err: common.Backend(errors.New("pq: connection refused")), wantStatus: http.StatusInternalServerError, wantBody: common.MessageInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &fakeSubmitter{outcome: tt.outcome, err: tt.err}
			h := newTestServer(sub, nil).Handler()

			body := `{"name":"foo","owner":"alice","secret":"S1","version":"1.0.0","binaries":["x"]}`
			rec := do(t, h, http.MethodPost, "/mods", body, map[string]string{"Content-Type": "application/json"})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "S1")

			calls := sub.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "alice/foo", calls[0].ID())
			assert.Equal(t, "S1", calls[0].Secret)
		})
	}
}

func TestSubmit_BadJSON(t *testing.T) {
	sub := &fakeSubmitter{}
	h := newTestServer(sub, nil).Handler()

	rec := do(t, h, http.MethodPost, "/mods", "{not json", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sub.calls())
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	sub := &fakeSubmitter{}
	h := newTestServer(sub, nil).Handler()

	body := `{"description":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := do(t, h, http.MethodPost, "/mods", body, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, sub.calls())
}

func TestGitHubHook_Ping(t *testing.T) {
	sub := &fakeSubmitter{}
	h := newTestServer(sub, nil).Handler()

	body := `{"repository":{"full_name":"Dual-Iron/centipede-shields","description":"shields"}}`
	rec := do(t, h, http.MethodPost, "/github?secret=S1", body, map[string]string{github.EventHeader: github.EventPing})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully connected")
	assert.Contains(t, rec.Body.String(), "centipede-shields")
	assert.Empty(t, sub.calls())
}

func TestGitHubHook_Release(t *testing.T) {
	sub := &fakeSubmitter{outcome: models.OutcomeCreated}
	h := newTestServer(sub, nil).Handler()

	body := `{
		"action": "published",
		"repository": {"full_name": "Dual-Iron/centipede-shields", "description": "shields", "homepage": null},
		"release": {
			"tag_name": "v0.3.0",
			"assets": [{"browser_download_url": "https://github.com/Dual-Iron/centipede-shields/releases/download/v0.3.0/CentiShields.dll"}]
		}
	}`
	rec := do(t, h, http.MethodPost, "/github?secret=S1", body, map[string]string{github.EventHeader: github.EventRelease})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully inserted mod.", rec.Body.String())

	calls := sub.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Dual-Iron/centipede-shields", calls[0].ID())
	assert.Equal(t, "S1", calls[0].Secret)
	assert.Equal(t, "v0.3.0", calls[0].Version)
}

func TestGitHubHook_DeletedRelease(t *testing.T) {
	sub := &fakeSubmitter{}
	h := newTestServer(sub, nil).Handler()

	body := `{"action":"deleted","repository":{"full_name":"a/b"},"release":{"tag_name":"1.0.0"}}`
	rec := do(t, h, http.MethodPost, "/github?secret=S1", body, map[string]string{github.EventHeader: github.EventRelease})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, github.MessageDeleted, rec.Body.String())
	assert.Empty(t, sub.calls())
}

func TestGitHubHook_UnknownEvent(t *testing.T) {
	h := newTestServer(nil, nil).Handler()

	rec := do(t, h, http.MethodPost, "/github", `{}`, map[string]string{github.EventHeader: "push"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	h := newTestServer(nil, nil).Handler()

	rec := do(t, h, http.MethodDelete, "/mods/alice/foo", "", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
