package sparqlclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func WithUpdateEndpoint(endpoint string) types.Option[*Client] {
	return func(c *Client) {
		c.updateEndpoint = endpoint
	}
}

// WithQueryEndpoint sets the endpoint used by Ping. It defaults to the update endpoint.
func WithQueryEndpoint(endpoint string) types.Option[*Client] {
	return func(c *Client) {
		c.queryEndpoint = endpoint
	}
}

// WithGraph writes into a named graph instead of the default graph.
func WithGraph(iri string) types.Option[*Client] {
	return func(c *Client) {
		c.graph = iri
	}
}

func WithHeader(key, value string) types.Option[*Client] {
	return func(c *Client) {
		c.headers[key] = value
	}
}

func WithBasicAuth(username, password string) types.Option[*Client] {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

func WithBearerToken(token string) types.Option[*Client] {
	return func(c *Client) {
		c.bearerToken = token
	}
}

func WithUserAgent(ua string) types.Option[*Client] {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each request. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) types.Option[*Client] {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) types.Option[*Client] {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRecordsPerRequest caps how many records go into one update request.
func WithRecordsPerRequest(n int) types.Option[*Client] {
	return func(c *Client) {
		if n > 0 {
			c.recordsPerRequest = n
		}
	}
}

// WithYield pauses between update requests of the same batch.
func WithYield(d time.Duration) types.Option[*Client] {
	return func(c *Client) {
		c.yield = d
	}
}

// WithPinnedCertificate pins the server certificate in the PEM file at path. NewClient fails when
// the file cannot be read.
func WithPinnedCertificate(path string) types.Option[*Client] {
	return func(c *Client) {
		cert, err := loadCertificate(path)
		if err != nil {
			c.optionErr = fmt.Errorf("sparqlclient: pinned certificate %s: %w", path, err)
			return
		}
		c.pinnedCert = cert
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
