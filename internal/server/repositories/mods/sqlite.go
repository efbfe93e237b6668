package mods

import (
	"strings"

	"github.com/dmitrijs2005/rdb/internal/dbx"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var sqliteDialect = &dialect{
	upsert: `
		INSERT INTO mods (id, secret, search, published, updated, version_key, info)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET
			search = excluded.search,
			updated = excluded.updated,
			version_key = excluded.version_key,
			info = excluded.info,
			revision = mods.revision + 1
			WHERE mods.secret = excluded.secret AND mods.version_key < excluded.version_key
		RETURNING revision`,
	guard: `SELECT secret, json_extract(info, '$.version') FROM mods WHERE id = ?`,
	get:   `SELECT ` + selectColumns + ` FROM mods WHERE id = ?`,
	count: `SELECT COUNT(*) FROM mods`,
	placeholder: func(int) string {
		return "?"
	},
	searchClause: func(terms []string, _ int) (string, []any) {
		conds := make([]string, 0, len(terms))
		args := make([]any, 0, len(terms))
		for _, t := range terms {
			conds = append(conds, `(' ' || lower(search) || ' ') LIKE ? ESCAPE '\'`)
			args = append(args, "% "+likeEscaper.Replace(strings.ToLower(t))+" %")
		}
		return "(" + strings.Join(conds, " OR ") + ")", args
	},
}

// SQLiteRepository implements Repository over a dbx.DBTX backed by
// modernc.org/sqlite. Callers should limit the pool to one connection.
type SQLiteRepository struct {
	sqlRepository
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{sqlRepository{db: db, d: sqliteDialect}}
}
