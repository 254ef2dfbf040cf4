package esclient

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/elastic/go-elasticsearch/v7/esutil"
	"github.com/hashicorp/go-multierror"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// WriteBatch indexes every document in batch with one bulk indexer. Documents are keyed by their
// document id, so a retried batch overwrites instead of duplicating. Any item failure fails the batch.
func (c *Client) WriteBatch(ctx context.Context, batch []types.Payload) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return types.ErrSinkClosed
	}

	var (
		mu   sync.Mutex
		merr *multierror.Error
	)
	record := func(err error) {
		mu.Lock()
		merr = multierror.Append(merr, err)
		mu.Unlock()
	}

	indexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     c.es,
		Index:      c.defaultIndex,
		NumWorkers: 1,
		FlushBytes: c.flushBytes,
		Refresh:    c.refresh,
		OnError: func(_ context.Context, err error) {
			record(fmt.Errorf("esclient: bulk request: %w", err))
		},
	})
	if err != nil {
		return fmt.Errorf("esclient: create bulk indexer: %w", err)
	}

	for _, p := range batch {
		if !p.HasDocument() {
			continue
		}
		if p.Index == "" && c.defaultIndex == "" {
			record(fmt.Errorf("esclient: record %s: no index configured", p.RecordID))
			continue
		}
		id := p.DocumentID
		if id == "" {
			id = p.RecordID
		}
		err := indexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			Index:      p.Index,
			DocumentID: id,
			Body:       bytes.NewReader(p.Document),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					record(fmt.Errorf("esclient: document %s: %w", item.DocumentID, err))
					return
				}
				record(fmt.Errorf("esclient: document %s: status %d: %s: %s",
					item.DocumentID, res.Status, res.Error.Type, res.Error.Reason))
			},
		})
		if err != nil {
			record(fmt.Errorf("esclient: add document %s: %w", id, err))
			break
		}
	}

	if err := indexer.Close(ctx); err != nil {
		record(fmt.Errorf("esclient: flush bulk indexer: %w", err))
	}

	stats := indexer.Stats()
	mu.Lock()
	result := merr.ErrorOrNil()
	mu.Unlock()

	if result != nil {
		c.NotifyLoggers(types.WarnLevel, "Bulk index failed",
			logschema.FieldComponent, c.GetComponentMetadata(),
			logschema.FieldEvent, "WriteBatch",
			logschema.FieldResult, logschema.ResultFailure,
			logschema.FieldBatchSize, len(batch),
			"indexed", stats.NumIndexed,
			"failed", stats.NumFailed,
			logschema.FieldError, result,
		)
		return result
	}
	c.NotifyLoggers(types.DebugLevel, "Bulk index complete",
		logschema.FieldComponent, c.GetComponentMetadata(),
		logschema.FieldEvent, "WriteBatch",
		logschema.FieldResult, logschema.ResultSuccess,
		logschema.FieldBatchSize, len(batch),
		"indexed", stats.NumIndexed,
	)
	return nil
}
