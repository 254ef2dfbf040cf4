package sparqlclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/sparqlclient"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type fakeStore struct {
	mu       sync.Mutex
	updates  []string
	failNext int
	auth     string
}

func (f *fakeStore) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = r.Header.Get("Authorization")

	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(`{"head":{},"boolean":true}`))
		return
	}
	if f.failNext > 0 {
		f.failNext--
		http.Error(w, "store overloaded", http.StatusServiceUnavailable)
		return
	}
	f.updates = append(f.updates, string(body))
	w.WriteHeader(http.StatusNoContent)
}

func record(id string) types.Payload {
	subject := "https://ex.org/person/" + id
	return types.Payload{
		RecordID: id,
		Triples: []types.Triple{
			{Subject: subject, Predicate: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", Object: "https://ex.org/Person"},
			{Subject: subject, Predicate: "https://ex.org/name", Object: "Name " + id, Literal: true},
		},
	}
}

func newClient(t *testing.T, store *fakeStore, opts ...types.Option[*sparqlclient.Client]) *sparqlclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(store.serve))
	t.Cleanup(srv.Close)
	c, err := sparqlclient.NewClient(append([]types.Option[*sparqlclient.Client]{
		sparqlclient.WithUpdateEndpoint(srv.URL + "/update"),
	}, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestBuildUpdateReplacesSubjects(t *testing.T) {
	got := sparqlclient.BuildUpdate("https://ex.org/g", []types.Payload{record("1")})

	if !strings.HasPrefix(got, "DELETE WHERE { GRAPH <https://ex.org/g> { <https://ex.org/person/1> ?p ?o } };") {
		t.Fatalf("expected subject delete first, got:\n%s", got)
	}
	if strings.Count(got, "DELETE WHERE") != 1 {
		t.Fatalf("expected one delete per subject, got:\n%s", got)
	}
	if !strings.Contains(got, `<https://ex.org/person/1> <https://ex.org/name> "Name 1" .`) {
		t.Fatalf("expected literal statement, got:\n%s", got)
	}
	if !strings.HasSuffix(got, "} }") {
		t.Fatalf("expected closed graph block, got:\n%s", got)
	}
}

func TestBuildUpdateDefaultGraphSkipsBlankNodeDeletes(t *testing.T) {
	p := types.Payload{Triples: []types.Triple{{Subject: "_:b0", Predicate: "https://ex.org/p", Object: "https://ex.org/o"}}}
	got := sparqlclient.BuildUpdate("", []types.Payload{p})
	if strings.Contains(got, "DELETE") || strings.Contains(got, "GRAPH") {
		t.Fatalf("unexpected delete or graph clause:\n%s", got)
	}
	if !strings.Contains(got, "_:b0 <https://ex.org/p> <https://ex.org/o> .") {
		t.Fatalf("expected blank node statement:\n%s", got)
	}
}

func TestWriteBatchChunksRecords(t *testing.T) {
	store := &fakeStore{}
	c := newClient(t, store,
		sparqlclient.WithRecordsPerRequest(2),
		sparqlclient.WithYield(time.Millisecond),
		sparqlclient.WithBearerToken("secret"),
	)

	batch := []types.Payload{record("1"), record("2"), {RecordID: "doc-only", Document: []byte(`{}`)}, record("3")}
	if err := c.WriteBatch(context.Background(), batch); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if len(store.updates) != 2 || c.Requests() != 2 {
		t.Fatalf("expected 2 update requests, got %d", len(store.updates))
	}
	if !strings.Contains(store.updates[1], "person/3") || strings.Contains(store.updates[1], "person/1") {
		t.Fatalf("unexpected second chunk:\n%s", store.updates[1])
	}
	if store.auth != "Bearer secret" {
		t.Fatalf("expected bearer auth header, got %q", store.auth)
	}
}

func TestWriteBatchReportsStatusError(t *testing.T) {
	store := &fakeStore{failNext: 1}
	c := newClient(t, store)

	err := c.WriteBatch(context.Background(), []types.Payload{record("1")})
	var statusErr *sparqlclient.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 status error, got %v", err)
	}
	if !strings.Contains(statusErr.Body, "store overloaded") {
		t.Fatalf("expected response body in error, got %q", statusErr.Body)
	}

	if err := c.WriteBatch(context.Background(), []types.Payload{record("1")}); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
}

func TestWriteBatchWithoutTriplesSendsNothing(t *testing.T) {
	store := &fakeStore{}
	c := newClient(t, store)
	if err := c.WriteBatch(context.Background(), []types.Payload{{RecordID: "x", Document: []byte(`{}`)}}); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if c.Requests() != 0 {
		t.Fatalf("expected no requests, got %d", c.Requests())
	}
}

func TestPingCloseAndValidation(t *testing.T) {
	store := &fakeStore{}
	c := newClient(t, store, sparqlclient.WithBasicAuth("u", "p"))

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !strings.HasPrefix(store.auth, "Basic ") {
		t.Fatalf("expected basic auth, got %q", store.auth)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.WriteBatch(context.Background(), []types.Payload{record("1")}); !errors.Is(err, types.ErrSinkClosed) {
		t.Fatalf("expected ErrSinkClosed, got %v", err)
	}

	if _, err := sparqlclient.NewClient(); err == nil {
		t.Fatalf("expected error without endpoint")
	}
	if _, err := sparqlclient.NewClient(sparqlclient.WithUpdateEndpoint("not a url")); err == nil {
		t.Fatalf("expected error for invalid endpoint")
	}
}

func TestNewClientFailsOnUnreadablePinnedCertificate(t *testing.T) {
	_, err := sparqlclient.NewClient(
		sparqlclient.WithUpdateEndpoint("https://example.com/update"),
		sparqlclient.WithPinnedCertificate(t.TempDir()+"/missing.pem"),
	)
	if err == nil || !strings.Contains(err.Error(), "pinned certificate") {
		t.Fatalf("expected pinned certificate error, got %v", err)
	}
}
