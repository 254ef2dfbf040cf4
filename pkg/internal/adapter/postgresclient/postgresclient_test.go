package postgresclient_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/postgresclient"
)

func newMockLoader(t *testing.T) (*postgresclient.Loader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return postgresclient.NewLoader(postgresclient.WithDB(db)), mock
}

func TestLoader_LoadsRecordInOneTransaction(t *testing.T) {
	loader, mock := newMockLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT type, version FROM "entities" WHERE id = $1`)).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"type", "version"}).AddRow("Person", int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name, value FROM "entity_fields" WHERE entity_id = $1`)).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).
			AddRow("alias", "Ada").
			AddRow("alias", "A. Lovelace").
			AddRow("name", "Ada Lovelace"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT predicate, target_id, target_type FROM "entity_relations" WHERE source_id = $1`)).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"predicate", "target_id", "target_type"}).
			AddRow("worksFor", "7", "Organization").
			AddRow("knows", "43", nil))
	mock.ExpectCommit()

	s, err := loader.LoadForIndexing(context.Background(), "42")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Type != "Person" || s.Version != 7 {
		t.Fatalf("unexpected entity header: %+v", s)
	}
	if got := s.Fields["alias"]; len(got) != 2 || got[1] != "A. Lovelace" {
		t.Fatalf("expected ordered multi-valued field, got %v", got)
	}
	if len(s.Relations) != 2 || s.Relations[0].TargetType != "Organization" || s.Relations[1].TargetType != "" {
		t.Fatalf("unexpected relations: %+v", s.Relations)
	}
	if s.LoadedAt.IsZero() {
		t.Fatalf("expected load timestamp")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoader_MissingRecordRollsBack(t *testing.T) {
	loader, mock := newMockLoader(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT type, version FROM`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"type", "version"}))
	mock.ExpectRollback()

	s, err := loader.LoadForIndexing(context.Background(), "gone")
	if err != nil || s != nil {
		t.Fatalf("expected (nil, nil) for a missing record, got (%v, %v)", s, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoader_QueryErrorRollsBack(t *testing.T) {
	loader, mock := newMockLoader(t)
	boom := errors.New("canceling statement due to statement timeout")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT type, version FROM`).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"type", "version"}).AddRow("Person", int64(1)))
	mock.ExpectQuery(`SELECT name, value FROM`).WithArgs("42").WillReturnError(boom)
	mock.ExpectRollback()

	if _, err := loader.LoadForIndexing(context.Background(), "42"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoader_CustomTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	loader := postgresclient.NewLoader(
		postgresclient.WithDB(db),
		postgresclient.WithTables(postgresclient.Tables{Entities: "catalog.records"}),
	)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "catalog"."records" WHERE id = $1`)).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"type", "version"}))
	mock.ExpectRollback()

	if _, err := loader.LoadForIndexing(context.Background(), "1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoader_ValidateRequiresSecureDSN(t *testing.T) {
	if err := postgresclient.NewLoader().Validate(); err == nil {
		t.Fatalf("expected missing dsn error")
	}
	insecure := postgresclient.NewLoader(postgresclient.WithDSN("postgres://u:p@db:5432/app?sslmode=disable"))
	if err := insecure.Validate(); err == nil {
		t.Fatalf("expected TLS requirement error")
	}
	relaxed := postgresclient.NewLoader(
		postgresclient.WithDSN("postgres://u:p@localhost:5432/app?sslmode=disable"),
		postgresclient.WithRequireTLS(false),
	)
	if err := relaxed.Validate(); err != nil {
		t.Fatalf("expected relaxed loader to validate, got %v", err)
	}
}
