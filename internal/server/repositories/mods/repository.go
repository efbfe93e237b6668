package mods

import (
	"context"

	"github.com/dmitrijs2005/rdb/internal/server/models"
)

// Repository stores mods keyed by "owner/name".
//
// Upsert must run inside a transaction: a rejected write is classified by a
// second statement that has to see the same row.
type Repository interface {
	// Upsert inserts entry or, when the stored secret matches and the stored
	// version is older, replaces its search, updated and info fields. A
	// rejected write returns common.ErrorUnauthorized or
	// common.ErrVersionConflict and changes nothing.
	Upsert(ctx context.Context, entry *models.ModEntry) (models.Outcome, error)
	// Get returns common.ErrorNotFound when id is unknown.
	Get(ctx context.Context, id string) (*models.ModEntry, error)
	List(ctx context.Context, q models.ListQuery) ([]*models.ModEntry, error)
	Count(ctx context.Context) (int64, error)
}
