package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/httpserver"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type fakeIndexer struct {
	mu       sync.Mutex
	ids      []string
	rejectAt int
	closed   bool
	flushed  bool
}

func (f *fakeIndexer) Index(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectAt > 0 && len(f.ids) == f.rejectAt {
		return types.ErrPipelineClosed
	}
	f.ids = append(f.ids, id)
	return nil
}

func (f *fakeIndexer) Flush(context.Context) types.FlushReport {
	f.flushed = true
	return types.FlushReport{Quiesced: true, Delivered: !f.closed}
}

func (f *fakeIndexer) Close() error { f.closed = true; return nil }

func (f *fakeIndexer) Stats() types.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return types.Stats{TasksSubmitted: uint64(len(f.ids))}
}

func (f *fakeIndexer) IsClosed() bool { return f.closed }

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestIndexEndpointSubmitsIDs(t *testing.T) {
	idx := &fakeIndexer{}
	h := httpserver.NewServer(idx).Handler()

	rec := post(t, h, "/index", `{"ids":["a","b","c"]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
	var resp httpserver.IndexResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Accepted != 3 || len(idx.ids) != 3 {
		t.Fatalf("expected 3 accepted, got %+v", resp)
	}
}

func TestIndexEndpointReportsClosedPipeline(t *testing.T) {
	idx := &fakeIndexer{rejectAt: 1}
	h := httpserver.NewServer(idx).Handler()

	rec := post(t, h, "/index", `{"ids":["a","b"]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"accepted":1`) {
		t.Fatalf("expected partial acceptance in %s", rec.Body)
	}

	if rec := post(t, h, "/index", `not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", rec.Code)
	}
}

func TestFlushStatsHealthAndMetrics(t *testing.T) {
	idx := &fakeIndexer{}
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()
	h := httpserver.NewServer(idx, httpserver.WithGatherer(reg)).Handler()

	if rec := post(t, h, "/flush", ""); rec.Code != http.StatusOK || !idx.flushed {
		t.Fatalf("expected flush 200, got %d", rec.Code)
	}

	_ = post(t, h, "/index", `{"ids":["a"]}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if !strings.Contains(rec.Body.String(), `"tasks_submitted":1`) {
		t.Fatalf("unexpected stats body %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "test_total 1") {
		t.Fatalf("expected metric in body: %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", rec.Code)
	}

	_ = idx.Close()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected unhealthy after close, got %d", rec.Code)
	}
	if rec := post(t, h, "/flush", ""); rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 for incomplete flush, got %d", rec.Code)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	s := httpserver.NewServer(&fakeIndexer{}, httpserver.WithAddress("127.0.0.1:0"), httpserver.WithTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not stop")
	}
}
