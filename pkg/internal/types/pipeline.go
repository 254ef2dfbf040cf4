package types

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
)

var (
	ErrPipelineClosed = errors.New("pipeline is closed")
	ErrUnknownSink    = errors.New("unknown sink")
)

// NamedSink binds a sink client to the name used for its stats and logs.
type NamedSink struct {
	Name   string
	Client SinkClient
}

// PipelineConfig is the runtime configuration of a pipeline.
type PipelineConfig struct {
	ConversionThreads     int
	MaxConcurrentTasks    int
	IngressBufferCapacity int
	SinkBufferCapacity    int

	BatchSize    int
	MaxWait      time.Duration
	PollInterval time.Duration

	WriteRatePerSecond float64
	WriteBurst         int

	MaxRetries          int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration

	BreakerMaxConsecutiveFailures int
	BreakerResetTimeout           time.Duration
	BreakerSingleProbe            bool

	FlushTimeout        time.Duration
	QuiescenceTimeout   time.Duration
	PoolShutdownTimeout time.Duration
}

// DefaultPipelineConfig returns the documented defaults.
func DefaultPipelineConfig() PipelineConfig {
	threads := runtime.NumCPU()
	return PipelineConfig{
		ConversionThreads:             threads,
		MaxConcurrentTasks:            2 * threads,
		IngressBufferCapacity:         1024,
		SinkBufferCapacity:            1024,
		BatchSize:                     250,
		MaxWait:                       time.Second,
		PollInterval:                  500 * time.Millisecond,
		WriteBurst:                    1,
		MaxRetries:                    3,
		RetryInitialBackoff:           100 * time.Millisecond,
		RetryMaxBackoff:               5 * time.Second,
		BreakerMaxConsecutiveFailures: 5,
		BreakerResetTimeout:           30 * time.Second,
		FlushTimeout:                  30 * time.Second,
		QuiescenceTimeout:             30 * time.Second,
		PoolShutdownTimeout:           10 * time.Second,
	}
}

// WithDefaults fills zero values from DefaultPipelineConfig. MaxConcurrentTasks defaults to twice
// the configured thread count.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	d := DefaultPipelineConfig()
	if c.ConversionThreads <= 0 {
		c.ConversionThreads = d.ConversionThreads
	}
	if c.MaxConcurrentTasks <= 0 {
		c.MaxConcurrentTasks = 2 * c.ConversionThreads
	}
	if c.IngressBufferCapacity <= 0 {
		c.IngressBufferCapacity = d.IngressBufferCapacity
	}
	if c.SinkBufferCapacity <= 0 {
		c.SinkBufferCapacity = d.SinkBufferCapacity
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxWait <= 0 {
		c.MaxWait = d.MaxWait
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.WriteBurst <= 0 {
		c.WriteBurst = d.WriteBurst
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryInitialBackoff <= 0 {
		c.RetryInitialBackoff = d.RetryInitialBackoff
	}
	if c.RetryMaxBackoff <= 0 {
		c.RetryMaxBackoff = d.RetryMaxBackoff
	}
	if c.BreakerMaxConsecutiveFailures <= 0 {
		c.BreakerMaxConsecutiveFailures = d.BreakerMaxConsecutiveFailures
	}
	if c.BreakerResetTimeout <= 0 {
		c.BreakerResetTimeout = d.BreakerResetTimeout
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = d.FlushTimeout
	}
	if c.QuiescenceTimeout <= 0 {
		c.QuiescenceTimeout = d.QuiescenceTimeout
	}
	if c.PoolShutdownTimeout <= 0 {
		c.PoolShutdownTimeout = d.PoolShutdownTimeout
	}
	return c
}

// Validate rejects configurations the pipeline cannot run with.
func (c PipelineConfig) Validate() error {
	switch {
	case c.ConversionThreads <= 0:
		return fmt.Errorf("pipeline: conversionThreads must be positive, got %d", c.ConversionThreads)
	case c.MaxConcurrentTasks < c.ConversionThreads:
		return fmt.Errorf("pipeline: maxConcurrentTasks (%d) must be >= conversionThreads (%d)", c.MaxConcurrentTasks, c.ConversionThreads)
	case c.IngressBufferCapacity <= 0 || c.SinkBufferCapacity <= 0:
		return fmt.Errorf("pipeline: buffer capacities must be positive")
	case c.BatchSize <= 0:
		return fmt.Errorf("pipeline: sinkWriterBatchSize must be positive, got %d", c.BatchSize)
	case c.MaxWait <= 0 || c.PollInterval <= 0:
		return fmt.Errorf("pipeline: sink writer wait and poll intervals must be positive")
	case c.WriteRatePerSecond < 0:
		return fmt.Errorf("pipeline: sinkWriteRatePerSecond must not be negative")
	case c.MaxRetries < 0:
		return fmt.Errorf("pipeline: maxRetries must not be negative")
	case c.RetryMaxBackoff < c.RetryInitialBackoff:
		return fmt.Errorf("pipeline: retryMaxBackoff must be >= retryInitialBackoff")
	case c.BreakerMaxConsecutiveFailures <= 0:
		return fmt.Errorf("pipeline: circuitBreakerMaxConsecutiveFailures must be positive")
	case c.BreakerResetTimeout <= 0:
		return fmt.Errorf("pipeline: circuitBreakerResetTimeout must be positive")
	}
	return nil
}

// FlushReport describes the outcome of a flush. Timeouts are reported, not raised.
type FlushReport struct {
	Quiesced  bool
	Delivered bool
	Elapsed   time.Duration
	Stats     Stats
}

// Complete reports whether both the quiescence wait and the marker delivery finished in time.
func (r FlushReport) Complete() bool {
	return r.Quiesced && r.Delivered
}

// Indexer is the public face of a pipeline.
type Indexer interface {
	Index(ctx context.Context, recordID string) error
	Flush(ctx context.Context) FlushReport
	Close() error
	Stats() Stats
}
