// Package esclient writes search documents to Elasticsearch through the bulk API.
package esclient

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/elastic/go-elasticsearch/v7"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// Client implements types.SinkClient for Elasticsearch. Payloads without a document are skipped.
type Client struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	esConfig     elasticsearch.Config
	es           *elasticsearch.Client
	defaultIndex string
	refresh      string
	flushBytes   int

	closed int32
}

// NewClient builds a client from options. Either WithAddresses or WithESClient is required.
func NewClient(options ...types.Option[*Client]) (*Client, error) {
	c := &Client{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "ELASTICSEARCH_CLIENT",
		},
		esConfig: elasticsearch.Config{
			// The sink writer owns retries.
			DisableRetry: true,
		},
	}
	for _, opt := range options {
		opt(c)
	}

	if c.es == nil {
		if len(c.esConfig.Addresses) == 0 && c.esConfig.CloudID == "" {
			return nil, fmt.Errorf("esclient: at least one address is required")
		}
		es, err := elasticsearch.NewClient(c.esConfig)
		if err != nil {
			return nil, fmt.Errorf("esclient: create client: %w", err)
		}
		c.es = es
	}
	return c, nil
}

func (c *Client) Name() string { return "ELASTICSEARCH_CLIENT" }

// Ping checks the cluster info endpoint.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("esclient: ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("esclient: ping: %s", res.Status())
	}
	c.NotifyLoggers(types.DebugLevel, "Elasticsearch reachable",
		logschema.FieldComponent, c.GetComponentMetadata(),
		logschema.FieldEvent, "Ping",
		logschema.FieldResult, logschema.ResultSuccess,
	)
	return nil
}

// Close marks the client closed. The underlying transport holds no resources that need release.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	c.NotifyLoggers(types.DebugLevel, "Elasticsearch client closed",
		logschema.FieldComponent, c.GetComponentMetadata(),
		logschema.FieldEvent, "Close",
	)
	return nil
}
