package postgresclient

import (
	"strings"
	"testing"
)

func TestExtractSSLMode(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@h/db?sslmode=verify-full":    "verify-full",
		"host=h dbname=app sslmode='require' user=u": "require",
		"host=h dbname=app":                          "",
	}
	for dsn, want := range cases {
		if got := extractSSLMode(dsn); got != want {
			t.Fatalf("%q: expected %q, got %q", dsn, want, got)
		}
	}
}

func TestBuildQueriesQuotesIdentifiers(t *testing.T) {
	q := buildQueries(Tables{Entities: "public.entities", Fields: `odd"name`, Relations: "rels"})
	if q.entity != `SELECT type, version FROM "public"."entities" WHERE id = $1` {
		t.Fatalf("unexpected entity query: %s", q.entity)
	}
	if want := `FROM "odd""name" WHERE`; !strings.Contains(q.fields, want) {
		t.Fatalf("expected escaped identifier in %s", q.fields)
	}
}
