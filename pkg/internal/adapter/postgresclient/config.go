package postgresclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate implements types.Validator.
func (l *Loader) Validate() error {
	l.dbLock.Lock()
	injected := l.db != nil
	l.dbLock.Unlock()
	if injected {
		return nil
	}
	if l.dsn == "" {
		return errors.New("postgres: dsn is required")
	}
	return l.validateTLSRequirement()
}

// Ping opens the connection pool if needed and verifies the database is reachable.
func (l *Loader) Ping(ctx context.Context) error {
	db, err := l.ensureDB(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the pool if the loader opened it.
func (l *Loader) Close() error {
	l.dbLock.Lock()
	defer l.dbLock.Unlock()
	if l.db == nil || !l.ownsDB {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

func (l *Loader) ensureDB(ctx context.Context) (*sql.DB, error) {
	l.dbLock.Lock()
	defer l.dbLock.Unlock()
	if l.db != nil {
		return l.db, nil
	}
	if err := l.validateTLSRequirement(); err != nil {
		return nil, err
	}

	db, err := sql.Open(l.driverName, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if l.pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(l.pool.MaxOpenConns)
	}
	if l.pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(l.pool.MaxIdleConns)
	}
	if l.pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(l.pool.ConnMaxLifetime)
	}
	if l.pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(l.pool.ConnMaxIdleTime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	l.db = db
	l.ownsDB = true
	return db, nil
}

func (l *Loader) validateTLSRequirement() error {
	if !l.requireTLS {
		return nil
	}
	mode := extractSSLMode(l.dsn)
	if mode == "" {
		return fmt.Errorf("postgres: sslmode must be set to require/verify-full (TLS required)")
	}
	switch strings.ToLower(mode) {
	case "require", "verify-full", "verify-ca":
		return nil
	default:
		return fmt.Errorf("postgres: insecure sslmode=%s (TLS required)", mode)
	}
}

// extractSSLMode reads sslmode from a URL or keyword/value DSN.
func extractSSLMode(dsn string) string {
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		return u.Query().Get("sslmode")
	}
	for _, part := range strings.Fields(dsn) {
		if k, v, ok := strings.Cut(part, "="); ok && strings.EqualFold(k, "sslmode") {
			return strings.Trim(v, `'"`)
		}
	}
	return ""
}
