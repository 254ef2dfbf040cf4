package esclient

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v7"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func WithAddresses(addresses ...string) types.Option[*Client] {
	return func(c *Client) {
		c.esConfig.Addresses = append(c.esConfig.Addresses, addresses...)
	}
}

func WithBasicAuth(username, password string) types.Option[*Client] {
	return func(c *Client) {
		c.esConfig.Username = username
		c.esConfig.Password = password
	}
}

func WithAPIKey(key string) types.Option[*Client] {
	return func(c *Client) {
		c.esConfig.APIKey = key
	}
}

// WithCACert trusts the PEM encoded certificate authority.
func WithCACert(pem []byte) types.Option[*Client] {
	return func(c *Client) {
		c.esConfig.CACert = pem
	}
}

func WithTransport(rt http.RoundTripper) types.Option[*Client] {
	return func(c *Client) {
		c.esConfig.Transport = rt
	}
}

// WithESClient injects a configured client; address and auth options are then ignored.
func WithESClient(es *elasticsearch.Client) types.Option[*Client] {
	return func(c *Client) {
		c.es = es
	}
}

// WithDefaultIndex sets the index used for payloads that do not name one.
func WithDefaultIndex(index string) types.Option[*Client] {
	return func(c *Client) {
		c.defaultIndex = index
	}
}

// WithRefresh sets the bulk refresh policy ("true", "false", "wait_for").
func WithRefresh(refresh string) types.Option[*Client] {
	return func(c *Client) {
		c.refresh = refresh
	}
}

func WithFlushBytes(n int) types.Option[*Client] {
	return func(c *Client) {
		if n > 0 {
			c.flushBytes = n
		}
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
