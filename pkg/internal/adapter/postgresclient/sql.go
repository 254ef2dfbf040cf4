package postgresclient

import (
	"strings"

	"github.com/jackc/pgx/v4"
)

type queries struct {
	entity    string
	fields    string
	relations string
}

func buildQueries(t Tables) queries {
	return queries{
		entity: "SELECT type, version FROM " + sanitizeTable(t.Entities) + " WHERE id = $1",
		fields: "SELECT name, value FROM " + sanitizeTable(t.Fields) +
			" WHERE entity_id = $1 ORDER BY name, position",
		relations: "SELECT predicate, target_id, target_type FROM " + sanitizeTable(t.Relations) +
			" WHERE source_id = $1 ORDER BY predicate, target_id",
	}
}

// sanitizeTable quotes a possibly schema-qualified table name.
func sanitizeTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}
