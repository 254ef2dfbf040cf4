// Package postgresclient loads records for indexing from Postgres. Every load runs in its own
// read-only, read-committed transaction, so concurrent conversions never share a unit of work.
package postgresclient

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
)

// Tables names the relations the loader reads. Names may be schema-qualified ("app.entities").
type Tables struct {
	Entities  string
	Fields    string
	Relations string
}

// PoolSettings tunes the database/sql pool. Zero values keep the driver defaults.
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Loader implements types.RecordLoader.
type Loader struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	loggersLock       sync.Mutex

	dsn        string
	driverName string
	requireTLS bool
	pool       PoolSettings
	tables     Tables

	dbLock  sync.Mutex
	db      *sql.DB
	ownsDB  bool
	queries queries
}

// NewLoader builds a loader. The connection is opened lazily on first use or on Ping.
func NewLoader(options ...types.Option[*Loader]) *Loader {
	l := &Loader{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "POSTGRES_LOADER",
		},
		driverName: "pgx",
		requireTLS: true,
		tables: Tables{
			Entities:  "entities",
			Fields:    "entity_fields",
			Relations: "entity_relations",
		},
	}
	for _, opt := range options {
		opt(l)
	}
	l.queries = buildQueries(l.tables)
	return l
}
