// Package services holds the registry's application logic: the submission
// pipeline, cached reads and the post-write hooks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/rdb/internal/common"
	"github.com/dmitrijs2005/rdb/internal/dbx"
	"github.com/dmitrijs2005/rdb/internal/logging"
	"github.com/dmitrijs2005/rdb/internal/server/models"
	"github.com/dmitrijs2005/rdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rdb/internal/server/search"
	"github.com/dmitrijs2005/rdb/internal/server/validation"
	"github.com/dmitrijs2005/rdb/internal/timex"
)

const tracerName = "github.com/dmitrijs2005/rdb/internal/server/services"

// Hook is notified after a submission has been committed.
type Hook interface {
	AfterWrite(ctx context.Context, entry *models.ModEntry, outcome models.Outcome)
}

// SubmissionService validates submissions and writes them with a single
// conditional upsert.
type SubmissionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *validation.Resolver
	timeout     time.Duration
	log         logging.Logger
	tracer      trace.Tracer
	hooks       []Hook
	now         func() int64
}

func NewSubmissionService(
	db *sql.DB,
	repomanager repomanager.RepositoryManager,
	resolver *validation.Resolver,
	timeout time.Duration,
	log logging.Logger,
	hooks ...Hook,
) *SubmissionService {
	return &SubmissionService{
		db:          db,
		repomanager: repomanager,
		resolver:    resolver,
		timeout:     timeout,
		log:         log,
		tracer:      otel.Tracer(tracerName),
		hooks:       hooks,
		now:         timex.Now,
	}
}

// Submit runs raw through normalization, binary resolution and the atomic
// upsert. Rejections are *common.Error values of kind validation,
// authorization or stale version; anything else is a backend error whose
// cause is logged, not returned to the caller as text.
func (s *SubmissionService) Submit(ctx context.Context, raw models.Submission) (models.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit")
	defer span.End()

	outcome, entry, err := s.submit(ctx, raw)

	modID := logID(raw, entry)
	span.SetAttributes(attribute.String("mod.id", modID))
	kind := common.KindOf(err)
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("submission.outcome", outcome.String()))
		s.log.Info(ctx, "mod submitted", "mod_id", entry.ID, "version", entry.Info.Version, "outcome", outcome.String())
		s.runHooks(ctx, entry, outcome)
		return outcome, nil
	case kind == common.KindBackend:
		span.SetAttributes(attribute.String("submission.outcome", string(kind)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend error")
		s.log.Error(ctx, "submission failed", "mod_id", modID, "error", err)
		return 0, asBackend(err)
	default:
		span.SetAttributes(attribute.String("submission.outcome", string(kind)))
		s.log.Info(ctx, "submission rejected", "mod_id", modID, "reason", err.Error())
		return 0, err
	}
}

func (s *SubmissionService) submit(ctx context.Context, raw models.Submission) (models.Outcome, *models.ModEntry, error) {
	sub, err := validation.Normalize(raw)
	if err != nil {
		return 0, nil, err
	}

	id := sub.ID()
	entry := &models.ModEntry{ID: id}

	binaries, err := s.resolver.ResolveAll(sub.Binaries)
	if err != nil {
		return 0, entry, err
	}

	now := s.now()
	entry.Secret = sub.Secret
	entry.Search = search.Tokens(id)
	entry.Published = now
	entry.Updated = now
	entry.Info = models.ModInfo{
		Binaries:    binaries,
		Version:     sub.Version,
		Description: sub.Description,
		Homepage:    sub.Homepage,
		Icon:        sub.Icon,
	}

	// A caller that goes away must not cancel an issued write.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	outcome, err := dbx.InTx(storeCtx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (models.Outcome, error) {
		return s.repomanager.Mods(tx).Upsert(ctx, entry)
	})
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return 0, entry, common.Authorization()
	case errors.Is(err, common.ErrVersionConflict):
		return 0, entry, common.StaleVersion()
	case err != nil:
		return 0, entry, common.Backend(err)
	}
	return outcome, entry, nil
}

func (s *SubmissionService) runHooks(ctx context.Context, entry *models.ModEntry, outcome models.Outcome) {
	if len(s.hooks) == 0 {
		return
	}
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	for _, h := range s.hooks {
		h.AfterWrite(hookCtx, entry, outcome)
	}
}

// logID is the identity to report for a submission: the stored key once
// normalization succeeded, otherwise the trimmed raw fields.
func logID(raw models.Submission, entry *models.ModEntry) string {
	if entry != nil {
		return entry.ID
	}
	return models.Identity(strings.TrimSpace(raw.Owner), strings.TrimSpace(raw.Name))
}

func asBackend(err error) error {
	var e *common.Error
	if errors.As(err, &e) {
		return e
	}
	return common.Backend(err)
}
