// Package mods provides the SQL repositories for registry entries. The same
// logic runs on PostgreSQL and SQLite; only the statements differ.
package mods

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rdb/internal/common"
	"github.com/dmitrijs2005/rdb/internal/dbx"
	"github.com/dmitrijs2005/rdb/internal/server/models"
	"github.com/dmitrijs2005/rdb/internal/server/version"
)

const selectColumns = `id, secret, search, published, updated, downloads, info`

// dialect holds the statements one database needs.
type dialect struct {
	upsert string
	guard  string
	get    string
	count  string
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// searchClause renders a condition matching any of terms. Parameters are
	// numbered from first.
	searchClause func(terms []string, first int) (string, []any)
}

type sqlRepository struct {
	db dbx.DBTX
	d  *dialect
}

// Upsert writes entry in a single conditional statement. The statement
// returns the row's revision: 0 for a fresh insert, more for an update, and
// no row when the secret or version predicate rejected the write.
func (r *sqlRepository) Upsert(ctx context.Context, entry *models.ModEntry) (models.Outcome, error) {
	key, err := version.Key(entry.Info.Version)
	if err != nil {
		return 0, fmt.Errorf("version key: %w", err)
	}
	info, err := json.Marshal(entry.Info)
	if err != nil {
		return 0, fmt.Errorf("encode info: %w", err)
	}

	var revision int64
	err = r.db.QueryRowContext(ctx, r.d.upsert,
		entry.ID, entry.Secret, entry.Search, entry.Published, entry.Updated, key, string(info),
	).Scan(&revision)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, r.rejection(ctx, entry)
	case err != nil:
		return 0, fmt.Errorf("db error: %w", err)
	case revision == 0:
		return models.OutcomeCreated, nil
	default:
		return models.OutcomeUpdated, nil
	}
}

// rejection explains why the conditional write did not apply. The secret is
// immutable, so re-reading it in the same transaction is race free.
func (r *sqlRepository) rejection(ctx context.Context, entry *models.ModEntry) error {
	var stored version.Record
	err := r.db.QueryRowContext(ctx, r.d.guard, entry.ID).Scan(&stored.Secret, &stored.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("mod %s disappeared after a rejected write", entry.ID)
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	switch v := version.Verify(&stored, entry.Secret, entry.Info.Version); v {
	case version.Failure:
		return common.ErrorUnauthorized
	case version.Old:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("mod %s: write rejected but re-read verifies as %s", entry.ID, v)
	}
}

func (r *sqlRepository) Get(ctx context.Context, id string) (*models.ModEntry, error) {
	row := r.db.QueryRowContext(ctx, r.d.get, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select mod: %w", err)
	}
	return entry, nil
}

func (r *sqlRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, r.d.count).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count mods: %w", err)
	}
	return n, nil
}

func (r *sqlRepository) List(ctx context.Context, q models.ListQuery) ([]*models.ModEntry, error) {
	query, args, err := r.listQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select mods: %w", err)
	}
	defer rows.Close()

	result := make([]*models.ModEntry, 0, models.PageSize)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *sqlRepository) listQuery(q models.ListQuery) (string, []any, error) {
	order, err := orderBy(q.Sort)
	if err != nil {
		return "", nil, err
	}
	if q.Page < 0 || q.Page > models.MaxPage {
		return "", nil, fmt.Errorf("page %d out of range", q.Page)
	}

	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + selectColumns + " FROM mods")
	if len(q.Search) > 0 {
		clause, searchArgs := r.d.searchClause(q.Search, 1)
		b.WriteString(" WHERE " + clause)
		args = append(args, searchArgs...)
	}
	b.WriteString(" ORDER BY " + order)
	fmt.Fprintf(&b, " LIMIT %s OFFSET %s", r.d.placeholder(len(args)+1), r.d.placeholder(len(args)+2))
	args = append(args, models.PageSize, q.Offset())

	return b.String(), args, nil
}

func orderBy(s models.Sort) (string, error) {
	switch s {
	case models.SortNew, "":
		return "updated DESC, id ASC", nil
	case models.SortOld:
		return "updated ASC, id ASC", nil
	case models.SortMostDownloads:
		return "COALESCE(downloads, 0) DESC, id ASC", nil
	case models.SortLeastDownloads:
		return "COALESCE(downloads, 0) ASC, id ASC", nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.ModEntry, error) {
	var (
		entry     models.ModEntry
		downloads sql.NullInt64
		info      []byte
	)
	if err := s.Scan(&entry.ID, &entry.Secret, &entry.Search, &entry.Published, &entry.Updated, &downloads, &info); err != nil {
		return nil, err
	}
	if downloads.Valid {
		n := downloads.Int64
		entry.Downloads = &n
	}
	if err := json.Unmarshal(info, &entry.Info); err != nil {
		return nil, fmt.Errorf("decode info of %s: %w", entry.ID, err)
	}
	return &entry, nil
}
