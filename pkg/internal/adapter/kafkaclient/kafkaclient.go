// Package kafkaclient publishes every payload as a change event on a Kafka topic. Messages are
// keyed by document id so all versions of a record land on the same partition in order.
package kafkaclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// MessageWriter is the subset of *kafka.Writer the client uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Client implements types.SinkClient for Kafka.
type Client struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	brokers      []string
	topic        string
	clientID     string
	tlsConfig    *tls.Config
	mechanism    sasl.Mechanism
	requiredAcks kafka.RequiredAcks
	batchTimeout time.Duration
	headers      map[string]string

	writer MessageWriter

	messages int64
	closed   int32
}

// NewClient builds a client. Without WithMessageWriter, brokers and a topic are required and a
// kafka-go Writer is created from them.
func NewClient(options ...types.Option[*Client]) (*Client, error) {
	c := &Client{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "KAFKA_CLIENT",
		},
		clientID:     "switchboard",
		requiredAcks: kafka.RequireAll,
		batchTimeout: 10 * time.Millisecond,
		headers:      make(map[string]string),
	}
	for _, opt := range options {
		opt(c)
	}

	if c.writer == nil {
		if len(c.brokers) == 0 || c.topic == "" {
			return nil, fmt.Errorf("kafkaclient: brokers and topic are required")
		}
		c.writer = &kafka.Writer{
			Addr:         kafka.TCP(c.brokers...),
			Topic:        c.topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: c.batchTimeout,
			RequiredAcks: c.requiredAcks,
			Transport: &kafka.Transport{
				TLS:      c.tlsConfig,
				SASL:     c.mechanism,
				ClientID: c.clientID,
			},
		}
	}
	return c, nil
}

func (c *Client) Name() string { return "KAFKA_CLIENT" }

// Messages returns how many messages have been acknowledged.
func (c *Client) Messages() int64 { return atomic.LoadInt64(&c.messages) }

// WriteBatch publishes one message per payload in a single synchronous write.
func (c *Client) WriteBatch(ctx context.Context, batch []types.Payload) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return types.ErrSinkClosed
	}
	if len(batch) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(batch))
	for _, p := range batch {
		msg, err := c.message(p)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := c.writer.WriteMessages(ctx, msgs...); err != nil {
		c.NotifyLoggers(types.WarnLevel, "Kafka publish failed",
			logschema.FieldComponent, c.GetComponentMetadata(),
			logschema.FieldEvent, "WriteBatch",
			logschema.FieldResult, logschema.ResultFailure,
			logschema.FieldBatchSize, len(batch),
			"topic", c.topic,
			logschema.FieldError, err,
		)
		return fmt.Errorf("kafkaclient: write messages: %w", err)
	}

	atomic.AddInt64(&c.messages, int64(len(msgs)))
	c.NotifyLoggers(types.DebugLevel, "Kafka publish complete",
		logschema.FieldComponent, c.GetComponentMetadata(),
		logschema.FieldEvent, "WriteBatch",
		logschema.FieldResult, logschema.ResultSuccess,
		logschema.FieldBatchSize, len(batch),
		"topic", c.topic,
	)
	return nil
}

// Ping dials the first reachable broker. Clients built around an injected writer without brokers
// have nothing to dial and always succeed.
func (c *Client) Ping(ctx context.Context) error {
	if len(c.brokers) == 0 {
		return nil
	}
	dialer := &kafka.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		ClientID:      c.clientID,
		TLS:           c.tlsConfig,
		SASLMechanism: c.mechanism,
	}
	var lastErr error
	for _, broker := range c.brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("kafkaclient: no broker reachable: %w", lastErr)
}

func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if err := c.writer.Close(); err != nil {
		return fmt.Errorf("kafkaclient: close writer: %w", err)
	}
	return nil
}

func (c *Client) message(p types.Payload) (kafka.Message, error) {
	value, err := json.Marshal(p)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafkaclient: encode record %s: %w", p.RecordID, err)
	}
	key := p.DocumentID
	if key == "" {
		key = p.RecordID
	}

	headers := make([]kafka.Header, 0, len(c.headers)+2)
	headers = append(headers,
		kafka.Header{Key: "record_id", Value: []byte(p.RecordID)},
		kafka.Header{Key: "entity_type", Value: []byte(p.EntityType)},
	)
	for k, v := range c.headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	}
	// the topic may only be set per message when the writer has none
	if _, ok := c.writer.(*kafka.Writer); !ok && c.topic != "" {
		msg.Topic = c.topic
	}
	return msg, nil
}
