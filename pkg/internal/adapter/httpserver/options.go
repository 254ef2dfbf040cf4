package httpserver

import (
	"crypto/tls"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeydtaylor/switchboard/pkg/internal/internallogger"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func WithAddress(address string) types.Option[*Server] {
	return func(s *Server) {
		if address != "" {
			s.address = address
		}
	}
}

// WithGatherer serves the gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) types.Option[*Server] {
	return func(s *Server) {
		s.gatherer = g
	}
}

func WithTimeout(d time.Duration) types.Option[*Server] {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTLSConfig serves HTTPS; the certificates must be set on cfg.
func WithTLSConfig(cfg *tls.Config) types.Option[*Server] {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

func WithMaxBodyBytes(n int64) types.Option[*Server] {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

func WithLogger(logger ...types.Logger) types.Option[*Server] {
	return func(s *Server) {
		s.ConnectLogger(logger...)
	}
}

func WithComponentMetadata(name string, id string) types.Option[*Server] {
	return func(s *Server) {
		s.SetComponentMetadata(name, id)
	}
}

func (s *Server) ConnectLogger(loggers ...types.Logger) {
	s.configLock.Lock()
	defer s.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			s.loggers = append(s.loggers, l)
		}
	}
}

func (s *Server) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	s.configLock.Lock()
	loggers := append([]types.Logger(nil), s.loggers...)
	s.configLock.Unlock()
	internallogger.Notify(loggers, level, msg, keysAndValues...)
}

func (s *Server) GetComponentMetadata() types.ComponentMetadata {
	s.configLock.Lock()
	defer s.configLock.Unlock()
	return s.componentMetadata
}

func (s *Server) SetComponentMetadata(name string, id string) {
	s.configLock.Lock()
	defer s.configLock.Unlock()
	s.componentMetadata.Name = name
	if id != "" {
		s.componentMetadata.ID = id
	}
}
