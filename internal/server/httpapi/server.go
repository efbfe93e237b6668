// Package httpapi exposes the registry over HTTP: the read endpoints, manual
// submissions and the GitHub webhook.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/rdb/internal/logging"
	"github.com/dmitrijs2005/rdb/internal/server/models"
)

const shutdownTimeout = 5 * time.Second

// Submitter runs the submission pipeline.
type Submitter interface {
	Submit(ctx context.Context, raw models.Submission) (models.Outcome, error)
}

// Reader serves the read endpoints.
type Reader interface {
	Get(ctx context.Context, id string) (*models.ModEntry, error)
	List(ctx context.Context, q models.ListQuery) ([]*models.ModEntry, error)
	Count(ctx context.Context) (int64, error)
}

type Server struct {
	addr        string
	submissions Submitter
	mods        Reader
	log         logging.Logger
}

func NewServer(addr string, submissions Submitter, mods Reader, log logging.Logger) *Server {
	return &Server{addr: addr, submissions: submissions, mods: mods, log: log}
}

// Handler returns the routed handler wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /mods/count", s.countMods)
	mux.HandleFunc("GET /mods/{owner}/{name}", s.oneMod)
	mux.HandleFunc("GET /mods", s.manyMods)
	mux.HandleFunc("GET /mods/{$}", s.manyMods)
	mux.HandleFunc("POST /mods", s.submit)
	mux.HandleFunc("POST /mods/{$}", s.submit)
	mux.HandleFunc("POST /github", s.githubHook)
	mux.HandleFunc("POST /github/{$}", s.githubHook)

	return chain(mux, s.recoverPanic, s.requestID)
}

// Run serves HTTP on the configured address until ctx is canceled, then shuts
// down, giving in-flight requests a few seconds to finish.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, lis)
}

func (s *Server) serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "HTTP server started", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.log.Info(ctx, "Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
