package esclient_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/esclient"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type bulkAction struct {
	Index string
	ID    string
	Doc   string
}

type fakeCluster struct {
	mu      sync.Mutex
	actions []bulkAction
	failIDs map[string]bool
	bulkErr bool
}

func (f *fakeCluster) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			fmt.Fprint(w, `{"name":"test","cluster_name":"test","version":{"number":"7.17.1","build_flavor":"default"},"tagline":"You Know, for Search"}`)
		case strings.HasSuffix(r.URL.Path, "/_bulk"):
			if f.bulkErr {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprint(w, `{"error":"unavailable"}`)
				return
			}
			f.serveBulk(t, w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeCluster) serveBulk(t *testing.T, w http.ResponseWriter, r *http.Request) {
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	var items []string
	hasErrors := false
	for scanner.Scan() {
		var action map[string]struct {
			Index string `json:"_index"`
			ID    string `json:"_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &action); err != nil {
			t.Errorf("decode action: %v", err)
			return
		}
		if !scanner.Scan() {
			t.Errorf("action without document")
			return
		}
		meta := action["index"]
		f.mu.Lock()
		f.actions = append(f.actions, bulkAction{Index: meta.Index, ID: meta.ID, Doc: scanner.Text()})
		f.mu.Unlock()

		if f.failIDs[meta.ID] {
			hasErrors = true
			items = append(items, fmt.Sprintf(`{"index":{"_id":%q,"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad field"}}}`, meta.ID))
			continue
		}
		items = append(items, fmt.Sprintf(`{"index":{"_id":%q,"status":201,"result":"created"}}`, meta.ID))
	}
	fmt.Fprintf(w, `{"took":1,"errors":%t,"items":[%s]}`, hasErrors, strings.Join(items, ","))
}

func newClient(t *testing.T, cluster *fakeCluster) *esclient.Client {
	t.Helper()
	srv := httptest.NewServer(cluster.handler(t))
	t.Cleanup(srv.Close)
	c, err := esclient.NewClient(esclient.WithAddresses(srv.URL), esclient.WithDefaultIndex("records"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func doc(id, index string) types.Payload {
	return types.Payload{
		RecordID:   id,
		DocumentID: id,
		Index:      index,
		Document:   json.RawMessage(fmt.Sprintf(`{"id":%q}`, id)),
	}
}

func TestWriteBatchIndexesDocumentsByID(t *testing.T) {
	cluster := &fakeCluster{}
	c := newClient(t, cluster)

	batch := []types.Payload{
		doc("p1", "people"),
		doc("p2", ""),
		{RecordID: "t1", Triples: []types.Triple{{Subject: "s", Predicate: "p", Object: "o"}}},
	}
	if err := c.WriteBatch(context.Background(), batch); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	if len(cluster.actions) != 2 {
		t.Fatalf("expected 2 bulk actions, got %d", len(cluster.actions))
	}
	if cluster.actions[0].ID != "p1" || cluster.actions[0].Index != "people" {
		t.Fatalf("unexpected first action: %+v", cluster.actions[0])
	}
	if cluster.actions[1].ID != "p2" || cluster.actions[1].Index != "" {
		t.Fatalf("expected default index for second action, got %+v", cluster.actions[1])
	}
	if cluster.actions[0].Doc != `{"id":"p1"}` {
		t.Fatalf("unexpected document body %s", cluster.actions[0].Doc)
	}
}

func TestWriteBatchFailsOnItemError(t *testing.T) {
	cluster := &fakeCluster{failIDs: map[string]bool{"bad": true}}
	c := newClient(t, cluster)

	err := c.WriteBatch(context.Background(), []types.Payload{doc("ok", ""), doc("bad", "")})
	if err == nil {
		t.Fatalf("expected batch failure")
	}
	if !strings.Contains(err.Error(), "mapper_parsing_exception") {
		t.Fatalf("expected item error in %v", err)
	}
}

func TestWriteBatchFailsOnUnavailableCluster(t *testing.T) {
	cluster := &fakeCluster{bulkErr: true}
	c := newClient(t, cluster)

	if err := c.WriteBatch(context.Background(), []types.Payload{doc("a", "")}); err == nil {
		t.Fatalf("expected bulk request failure")
	}
}

func TestWriteBatchWithoutDocumentsIsNoop(t *testing.T) {
	cluster := &fakeCluster{}
	c := newClient(t, cluster)

	batch := []types.Payload{{RecordID: "t1", Triples: []types.Triple{{Subject: "s", Predicate: "p", Object: "o"}}}}
	if err := c.WriteBatch(context.Background(), batch); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if len(cluster.actions) != 0 {
		t.Fatalf("expected no bulk actions, got %d", len(cluster.actions))
	}
}

func TestPingAndClose(t *testing.T) {
	cluster := &fakeCluster{}
	c := newClient(t, cluster)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.WriteBatch(context.Background(), []types.Payload{doc("a", "")}); !errors.Is(err, types.ErrSinkClosed) {
		t.Fatalf("expected ErrSinkClosed after close, got %v", err)
	}
}

func TestNewClientRequiresAddress(t *testing.T) {
	if _, err := esclient.NewClient(); err == nil {
		t.Fatalf("expected error without addresses")
	}
}
