package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/rdb/internal/common"
	"github.com/dmitrijs2005/rdb/internal/server/github"
	"github.com/dmitrijs2005/rdb/internal/server/models"
	"github.com/dmitrijs2005/rdb/internal/server/search"
)

// maxBodyBytes bounds submission and webhook bodies.
const maxBodyBytes = 64 << 10

const indexText = `GET /
Gets this page.

GET /mods/<owner>/<name>
Gets a specific mod. Example response body:
{
    "name": "centipede-shields",
    "owner": "Dual-Iron",
    "published": 1641861631,
    "updated": 1641861631,
    "downloads": 0,
    "description": "A plugin for Rain World",
    "homepage": "",
    "version": "0.3.0",
    "icon": "https://raw.githubusercontent.com/Dual-Iron/centipede-shields/master/icon.png",
    "binaries": ["https://github.com/Dual-Iron/centipede-shields/releases/download/0.3.0/CentiShields.dll"]
}

GET /mods?page=<page>&sort=<sort>&search=<search>
Gets a page of 20 mods. ` + "`page`" + ` is the number of pages to skip; ` + "`sort`" + ` is one of new, old,
most-downloads (or top), least-downloads (or bottom); ` + "`search`" + ` filters by mods whose names match.

GET /mods/count
Gets the number of mods.

POST /mods (Content-Type=application/json)
Submits a mod. If a mod with the same owner and name exists, the secret must match and the version
must be newer. Every binary must be a GitHub release asset, Google Drive file, or Discord attachment.
Example request body:
{
    "name": "centipede-shields",
    "owner": "Dual-Iron",
    "secret": "not telling you this",
    "description": "A plugin for Rain World",
    "homepage": "",
    "version": "0.3.0",
    "icon": "https://raw.githubusercontent.com/Dual-Iron/centipede-shields/master/icon.png",
    "binaries": ["https://github.com/Dual-Iron/centipede-shields/releases/download/0.3.0/CentiShields.dll"]
}

POST /github?secret=<secret>
GitHub webhook for ping and release events. Each release is submitted like POST /mods.
`

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, indexText)
}

func (s *Server) oneMod(w http.ResponseWriter, r *http.Request) {
	id := models.Identity(r.PathValue("owner"), r.PathValue("name"))

	entry, err := s.mods.Get(r.Context(), id)
	if errors.Is(err, common.ErrorNotFound) {
		writeText(w, http.StatusNotFound, "Mod not found.")
		return
	}
	if err != nil {
		s.logger(r.Context()).Error(r.Context(), "get mod failed", "mod_id", id, "error", err)
		writeText(w, http.StatusInternalServerError, common.MessageInternal)
		return
	}
	writeJSON(w, http.StatusOK, entry.Public())
}

func (s *Server) manyMods(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	q := models.ListQuery{Search: search.Terms(values.Get("search"))}

	if p := values.Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 0 || page > models.MaxPage {
			writeText(w, http.StatusBadRequest, "Page must be a non-negative integer.")
			return
		}
		q.Page = page
	}

	sort, err := models.ParseSort(values.Get("sort"))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Sort must be one of new, old, most-downloads, least-downloads, top, bottom.")
		return
	}
	q.Sort = sort

	entries, err := s.mods.List(r.Context(), q)
	if err != nil {
		s.logger(r.Context()).Error(r.Context(), "list mods failed", "error", err)
		writeText(w, http.StatusInternalServerError, common.MessageInternal)
		return
	}

	out := make([]models.PublicMod, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Public())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) countMods(w http.ResponseWriter, r *http.Request) {
	n, err := s.mods.Count(r.Context())
	if err != nil {
		s.logger(r.Context()).Error(r.Context(), "count mods failed", "error", err)
		writeText(w, http.StatusInternalServerError, common.MessageInternal)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "Request body is too large.")
			return false
		}
		writeText(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return false
	}
	return true
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var sub models.Submission
	if !decodeBody(w, r, &sub) {
		return
	}
	s.respondSubmit(w, r, sub)
}

// respondSubmit runs the pipeline and renders its result: 200 with the
// outcome message, 400 with the rejection message or 500.
func (s *Server) respondSubmit(w http.ResponseWriter, r *http.Request, sub models.Submission) {
	outcome, err := s.submissions.Submit(r.Context(), sub)
	if err != nil {
		if common.KindOf(err) == common.KindBackend {
			writeText(w, http.StatusInternalServerError, common.MessageInternal)
			return
		}
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	writeText(w, http.StatusOK, outcome.Message())
}

func (s *Server) githubHook(w http.ResponseWriter, r *http.Request) {
	switch r.Header.Get(github.EventHeader) {
	case github.EventPing:
		var p github.PingPayload
		if !decodeBody(w, r, &p) {
			return
		}
		preview, err := p.Preview()
		if err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		writeText(w, http.StatusOK, preview)

	case github.EventRelease:
		var p github.ReleasePayload
		if !decodeBody(w, r, &p) {
			return
		}
		sub, err := p.Submission(r.URL.Query().Get("secret"))
		if err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondSubmit(w, r, sub)

	default:
		writeText(w, http.StatusBadRequest, "Only ping and release events are supported.")
	}
}
