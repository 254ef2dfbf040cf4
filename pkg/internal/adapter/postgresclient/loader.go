package postgresclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// LoadForIndexing implements types.RecordLoader. A record that does not exist yields (nil, nil).
func (l *Loader) LoadForIndexing(ctx context.Context, id string) (*types.RecordSnapshot, error) {
	db, err := l.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			l.notifyRollbackFailed(id, rbErr)
		}
	}()

	snapshot, err := l.load(ctx, tx, id)
	if err != nil || snapshot == nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: commit: %w", err)
	}
	return snapshot, nil
}

func (l *Loader) load(ctx context.Context, tx *sql.Tx, id string) (*types.RecordSnapshot, error) {
	s := &types.RecordSnapshot{ID: id, Fields: make(map[string][]string)}

	err := tx.QueryRowContext(ctx, l.queries.entity, id).Scan(&s.Type, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load entity %s: %w", id, err)
	}

	rows, err := tx.QueryContext(ctx, l.queries.fields, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: load fields %s: %w", id, err)
	}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("postgres: scan field %s: %w", id, err)
		}
		s.Fields[name] = append(s.Fields[name], value)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("postgres: load fields %s: %w", id, err)
	}

	rows, err = tx.QueryContext(ctx, l.queries.relations, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: load relations %s: %w", id, err)
	}
	for rows.Next() {
		var r types.Relation
		var targetType sql.NullString
		if err := rows.Scan(&r.Predicate, &r.TargetID, &targetType); err != nil {
			rows.Close()
			return nil, fmt.Errorf("postgres: scan relation %s: %w", id, err)
		}
		r.TargetType = targetType.String
		s.Relations = append(s.Relations, r)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("postgres: load relations %s: %w", id, err)
	}

	s.LoadedAt = time.Now().UTC()
	return s, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

func (l *Loader) notifyRollbackFailed(id string, err error) {
	l.NotifyLoggers(
		types.WarnLevel,
		"Read transaction rollback failed",
		logschema.FieldComponent, l.GetComponentMetadata(),
		logschema.FieldEvent, "Rollback",
		logschema.FieldResult, logschema.ResultFailure,
		logschema.FieldRecordID, id,
		logschema.FieldError, err,
	)
}
