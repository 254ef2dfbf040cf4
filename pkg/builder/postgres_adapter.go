package builder

import (
	"database/sql"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/postgresclient"
	"github.com/joeydtaylor/switchboard/pkg/internal/mapper"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type (
	PostgresLoader = postgresclient.Loader
	PostgresTables = postgresclient.Tables
	PostgresPool   = postgresclient.PoolSettings
	Mapper         = mapper.Mapper
	Mapping        = mapper.Mapping
	TypeMapping    = mapper.TypeMapping
	FieldMapping   = mapper.FieldMapping
)

// ErrUnmappedType fails a record whose entity type has no mapping.
var ErrUnmappedType = mapper.ErrUnmappedType

// NewPostgresLoader creates a record loader. The connection opens on first use.
func NewPostgresLoader(options ...types.Option[*PostgresLoader]) *PostgresLoader {
	return postgresclient.NewLoader(options...)
}

func PostgresWithDSN(dsn string) types.Option[*PostgresLoader] {
	return postgresclient.WithDSN(dsn)
}

// PostgresWithDB injects an open pool; the loader will not close it.
func PostgresWithDB(db *sql.DB) types.Option[*PostgresLoader] {
	return postgresclient.WithDB(db)
}

// PostgresWithRequireTLS rejects DSNs without an encrypted sslmode. Enabled by default.
func PostgresWithRequireTLS(require bool) types.Option[*PostgresLoader] {
	return postgresclient.WithRequireTLS(require)
}

func PostgresWithTables(t PostgresTables) types.Option[*PostgresLoader] {
	return postgresclient.WithTables(t)
}

func PostgresWithPoolSettings(p PostgresPool) types.Option[*PostgresLoader] {
	return postgresclient.WithPoolSettings(p)
}

func PostgresWithLogger(l ...types.Logger) types.Option[*PostgresLoader] {
	return postgresclient.WithLogger(l...)
}

func PostgresWithComponentMetadata(name string, id string) types.Option[*PostgresLoader] {
	return postgresclient.WithComponentMetadata(name, id)
}

// NewMapper wraps a parsed mapping as a DocumentMapper.
func NewMapper(m Mapping) *Mapper {
	return mapper.NewMapper(m)
}

// LoadMapping reads a YAML mapping file.
func LoadMapping(path string) (Mapping, error) {
	return mapper.LoadMapping(path)
}

// ParseMapping decodes a YAML mapping document.
func ParseMapping(data []byte) (Mapping, error) {
	return mapper.ParseMapping(data)
}
