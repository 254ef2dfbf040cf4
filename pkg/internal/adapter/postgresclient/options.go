package postgresclient

import (
	"database/sql"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func WithDSN(dsn string) types.Option[*Loader] {
	return func(l *Loader) {
		l.dsn = dsn
	}
}

// WithDriverName overrides the database/sql driver; the default is the pgx stdlib driver.
func WithDriverName(name string) types.Option[*Loader] {
	return func(l *Loader) {
		if name != "" {
			l.driverName = name
		}
	}
}

// WithDB injects an open pool. The loader does not close an injected pool.
func WithDB(db *sql.DB) types.Option[*Loader] {
	return func(l *Loader) {
		l.db = db
		l.ownsDB = false
	}
}

// WithRequireTLS controls whether the DSN must request an encrypted sslmode. Default true.
func WithRequireTLS(require bool) types.Option[*Loader] {
	return func(l *Loader) {
		l.requireTLS = require
	}
}

func WithPoolSettings(p PoolSettings) types.Option[*Loader] {
	return func(l *Loader) {
		l.pool = p
	}
}

// WithTables overrides the table names; empty fields keep their defaults.
func WithTables(t Tables) types.Option[*Loader] {
	return func(l *Loader) {
		if t.Entities != "" {
			l.tables.Entities = t.Entities
		}
		if t.Fields != "" {
			l.tables.Fields = t.Fields
		}
		if t.Relations != "" {
			l.tables.Relations = t.Relations
		}
	}
}

func WithLogger(logger ...types.Logger) types.Option[*Loader] {
	return func(l *Loader) {
		l.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*Loader] {
	return func(l *Loader) {
		l.SetComponentMetadata(name, id)
	}
}

func (l *Loader) ConnectLogger(loggers ...types.Logger) {
	l.loggersLock.Lock()
	defer l.loggersLock.Unlock()
	for _, lg := range loggers {
		if lg != nil {
			l.loggers = append(l.loggers, lg)
		}
	}
}

func (l *Loader) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	l.loggersLock.Lock()
	loggers := append([]types.Logger(nil), l.loggers...)
	l.loggersLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (l *Loader) GetComponentMetadata() types.ComponentMetadata {
	l.loggersLock.Lock()
	defer l.loggersLock.Unlock()
	return l.componentMetadata
}

func (l *Loader) SetComponentMetadata(name string, id string) {
	l.loggersLock.Lock()
	defer l.loggersLock.Unlock()
	l.componentMetadata.Name = name
	if id != "" {
		l.componentMetadata.ID = id
	}
}
