// Package sparqlclient writes RDF statements to a triple store with SPARQL 1.1 Update requests.
//
// Each record's previous statements are deleted and its new statements inserted in the same
// request, so a replayed batch converges to the same graph. Large batches are split into
// sub-batches of whole records; each sub-batch is one atomic update request.
package sparqlclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

const (
	contentTypeUpdate = "application/sparql-update"
	maxErrorBody      = 512
)

// Client implements types.SinkClient for a SPARQL 1.1 endpoint. Payloads without triples are skipped.
type Client struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	updateEndpoint string
	queryEndpoint  string
	graph          string
	headers        map[string]string
	username       string
	password       string
	bearerToken    string
	userAgent      string
	timeout        time.Duration

	recordsPerRequest int
	yield             time.Duration

	httpClient *http.Client
	pinnedCert []byte
	optionErr  error

	requests int64
	closed   int32
}

// NewClient builds a client. WithUpdateEndpoint is required.
func NewClient(options ...types.Option[*Client]) (*Client, error) {
	c := &Client{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "SPARQL_CLIENT",
		},
		headers:           make(map[string]string),
		userAgent:         "switchboard",
		timeout:           30 * time.Second,
		recordsPerRequest: 100,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.optionErr != nil {
		return nil, c.optionErr
	}
	if c.updateEndpoint == "" {
		return nil, fmt.Errorf("sparqlclient: update endpoint is required")
	}
	if _, err := url.ParseRequestURI(c.updateEndpoint); err != nil {
		return nil, fmt.Errorf("sparqlclient: invalid update endpoint: %w", err)
	}
	if c.queryEndpoint == "" {
		c.queryEndpoint = c.updateEndpoint
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if len(c.pinnedCert) > 0 {
		c.httpClient.Transport = pinnedTransport(c.pinnedCert)
	}
	return c, nil
}

func (c *Client) Name() string { return "SPARQL_CLIENT" }

// Requests returns the number of update requests sent.
func (c *Client) Requests() int64 { return atomic.LoadInt64(&c.requests) }

// WriteBatch sends the batch as one or more update requests. A failed sub-batch fails the whole
// batch; sub-batches already applied are rewritten identically on retry.
func (c *Client) WriteBatch(ctx context.Context, batch []types.Payload) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return types.ErrSinkClosed
	}

	withTriples := utils.Filter(batch, func(p types.Payload) bool { return p.HasTriples() })
	if len(withTriples) == 0 {
		return nil
	}

	chunks := utils.Chunk(withTriples, c.recordsPerRequest)
	for i, chunk := range chunks {
		if i > 0 && c.yield > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.yield):
			}
		}
		if err := c.update(ctx, BuildUpdate(c.graph, chunk)); err != nil {
			c.NotifyLoggers(types.WarnLevel, "SPARQL update failed",
				logschema.FieldComponent, c.GetComponentMetadata(),
				logschema.FieldEvent, "WriteBatch",
				logschema.FieldResult, logschema.ResultFailure,
				logschema.FieldBatchSize, len(chunk),
				"chunk", i,
				logschema.FieldError, err,
			)
			return err
		}
	}

	c.NotifyLoggers(types.DebugLevel, "SPARQL update complete",
		logschema.FieldComponent, c.GetComponentMetadata(),
		logschema.FieldEvent, "WriteBatch",
		logschema.FieldResult, logschema.ResultSuccess,
		logschema.FieldBatchSize, len(withTriples),
		"requests", len(chunks),
	)
	return nil
}

// Ping asks the query endpoint an empty ASK query.
func (c *Client) Ping(ctx context.Context) error {
	form := url.Values{"query": {"ASK {}"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sparqlclient: build ping request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	if err := c.do(req); err != nil {
		return fmt.Errorf("sparqlclient: ping: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) update(ctx context.Context, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.updateEndpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("sparqlclient: build update request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeUpdate)
	atomic.AddInt64(&c.requests, 1)
	if err := c.do(req); err != nil {
		return fmt.Errorf("sparqlclient: update: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) error {
	c.configLock.Lock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	c.configLock.Unlock()
	req.Header.Set("User-Agent", c.userAgent)
	switch {
	case c.bearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	case c.username != "":
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}
