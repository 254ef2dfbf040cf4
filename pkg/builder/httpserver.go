package builder

import (
	"crypto/tls"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/httpserver"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type HTTPServer = httpserver.Server

// NewHTTPServer exposes /index, /flush, /stats and /healthz for indexer, plus /metrics when a
// gatherer is configured.
func NewHTTPServer(indexer Indexer, options ...types.Option[*HTTPServer]) *HTTPServer {
	return httpserver.NewServer(indexer, options...)
}

func HTTPServerWithAddress(address string) types.Option[*HTTPServer] {
	return httpserver.WithAddress(address)
}

func HTTPServerWithGatherer(g prometheus.Gatherer) types.Option[*HTTPServer] {
	return httpserver.WithGatherer(g)
}

func HTTPServerWithTimeout(d time.Duration) types.Option[*HTTPServer] {
	return httpserver.WithTimeout(d)
}

func HTTPServerWithTLS(cfg *tls.Config) types.Option[*HTTPServer] {
	return httpserver.WithTLSConfig(cfg)
}

func HTTPServerWithLogger(l ...types.Logger) types.Option[*HTTPServer] {
	return httpserver.WithLogger(l...)
}
