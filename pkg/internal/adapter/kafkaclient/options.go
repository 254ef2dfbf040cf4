package kafkaclient

import (
	"crypto/tls"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func WithBrokers(brokers ...string) types.Option[*Client] {
	return func(c *Client) {
		c.brokers = append(c.brokers, brokers...)
	}
}

func WithTopic(topic string) types.Option[*Client] {
	return func(c *Client) {
		c.topic = topic
	}
}

func WithClientID(id string) types.Option[*Client] {
	return func(c *Client) {
		if id != "" {
			c.clientID = id
		}
	}
}

func WithTLS(cfg *tls.Config) types.Option[*Client] {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

func WithSASL(mechanism sasl.Mechanism) types.Option[*Client] {
	return func(c *Client) {
		c.mechanism = mechanism
	}
}

// WithRequiredAcks overrides the acknowledgement level. The default waits for all in-sync replicas.
func WithRequiredAcks(acks kafka.RequiredAcks) types.Option[*Client] {
	return func(c *Client) {
		c.requiredAcks = acks
	}
}

func WithBatchTimeout(d time.Duration) types.Option[*Client] {
	return func(c *Client) {
		if d > 0 {
			c.batchTimeout = d
		}
	}
}

// WithHeader adds a static header to every message.
func WithHeader(key, value string) types.Option[*Client] {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithMessageWriter injects the writer, e.g. a preconfigured *kafka.Writer.
func WithMessageWriter(w MessageWriter) types.Option[*Client] {
	return func(c *Client) {
		c.writer = w
	}
}

func WithLogger(logger ...types.Logger) types.Option[*Client] {
	return func(c *Client) {
		c.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*Client] {
	return func(c *Client) {
		c.SetComponentMetadata(name, id)
	}
}

func (c *Client) ConnectLogger(loggers ...types.Logger) {
	c.configLock.Lock()
	defer c.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			c.loggers = append(c.loggers, l)
		}
	}
}

func (c *Client) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	c.configLock.Lock()
	loggers := append([]types.Logger(nil), c.loggers...)
	c.configLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (c *Client) GetComponentMetadata() types.ComponentMetadata {
	c.configLock.Lock()
	defer c.configLock.Unlock()
	return c.componentMetadata
}

func (c *Client) SetComponentMetadata(name string, id string) {
	c.configLock.Lock()
	defer c.configLock.Unlock()
	c.componentMetadata.Name = name
	if id != "" {
		c.componentMetadata.ID = id
	}
}
