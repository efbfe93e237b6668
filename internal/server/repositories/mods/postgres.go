package mods

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rdb/internal/dbx"
)

var postgresDialect = &dialect{
	upsert: `
		INSERT INTO mods (id, secret, search, published, updated, version_key, info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			search = EXCLUDED.search,
			updated = EXCLUDED.updated,
			version_key = EXCLUDED.version_key,
			info = EXCLUDED.info,
			revision = mods.revision + 1
			WHERE mods.secret = EXCLUDED.secret AND mods.version_key < EXCLUDED.version_key
		RETURNING revision`,
	guard: `SELECT secret, info->>'version' FROM mods WHERE id = $1`,
	get:   `SELECT ` + selectColumns + ` FROM mods WHERE id = $1`,
	count: `SELECT COUNT(*) FROM mods`,
	placeholder: func(n int) string {
		return fmt.Sprintf("$%d", n)
	},
	searchClause: func(terms []string, first int) (string, []any) {
		return fmt.Sprintf("to_tsvector('simple', search) @@ websearch_to_tsquery('simple', $%d)", first),
			[]any{websearchQuery(terms)}
	},
}

// websearchQuery ORs terms in websearch_to_tsquery syntax. Quotes would open
// phrases, so they are dropped.
func websearchQuery(terms []string) string {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, `"`, "")
		t = strings.TrimLeft(t, "-")
		if t != "" && t != "or" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, " or ")
}

// PostgresRepository implements Repository over a dbx.DBTX backed by pgx.
type PostgresRepository struct {
	sqlRepository
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{sqlRepository{db: db, d: postgresDialect}}
}
