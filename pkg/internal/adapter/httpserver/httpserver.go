// Package httpserver exposes a running indexer over HTTP: record submission, flush, stats,
// health and Prometheus metrics.
package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// Server serves the operational endpoints of one indexer.
type Server struct {
	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	configLock        sync.Mutex

	indexer   types.Indexer
	gatherer  prometheus.Gatherer
	address   string
	timeout   time.Duration
	tlsConfig *tls.Config
	maxBody   int64

	serverMu sync.Mutex
	server   *http.Server
	listener net.Listener
}

func NewServer(indexer types.Indexer, options ...types.Option[*Server]) *Server {
	s := &Server{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "HTTP_SERVER",
		},
		indexer: indexer,
		address: ":8080",
		timeout: 30 * time.Second,
		maxBody: 1 << 20,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Handler returns the routing table. It is usable without Serve, e.g. under httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/index", s.handleIndex)
	mux.HandleFunc("/flush", s.handleFlush)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Serve listens until ctx is done or the listener fails. Cancellation shuts the server down
// gracefully within the configured timeout and returns ctx.Err().
func (s *Server) Serve(ctx context.Context) error {
	s.serverMu.Lock()
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		s.serverMu.Unlock()
		return err
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.timeout,
		ReadTimeout:       s.timeout,
		WriteTimeout:      s.timeout,
		TLSConfig:         s.tlsConfig,
	}
	srv := s.server
	s.serverMu.Unlock()

	s.NotifyLoggers(types.InfoLevel, "HTTP server listening",
		logschema.FieldComponent, s.GetComponentMetadata(),
		logschema.FieldEvent, "Serve",
		"address", ln.Addr().String(),
		"tls", s.tlsConfig != nil,
	)

	errChan := make(chan error, 1)
	go func() {
		if s.tlsConfig != nil {
			errChan <- srv.ServeTLS(ln, "", "")
			return
		}
		errChan <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.NotifyLoggers(types.InfoLevel, "HTTP server stopped",
			logschema.FieldComponent, s.GetComponentMetadata(),
			logschema.FieldEvent, "Serve",
			logschema.FieldResult, logschema.ResultCancelled,
		)
		return ctx.Err()
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.NotifyLoggers(types.ErrorLevel, "HTTP server failed",
				logschema.FieldComponent, s.GetComponentMetadata(),
				logschema.FieldEvent, "Serve",
				logschema.FieldResult, logschema.ResultFailure,
				logschema.FieldError, err,
			)
			return err
		}
		return nil
	}
}

// Addr returns the bound address once Serve is listening.
func (s *Server) Addr() string {
	s.serverMu.Lock()
	defer s.serverMu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
