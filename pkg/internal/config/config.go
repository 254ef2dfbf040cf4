// Package config loads switchboard configuration from a YAML file, SWITCHBOARD_* environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// Config is the complete process configuration.
type Config struct {
	Pipeline PipelineSettings `mapstructure:",squash"`
	Log      LogConfig        `mapstructure:"log"`
	Metrics  MetricsConfig    `mapstructure:"metrics"`
	HTTP     HTTPConfig       `mapstructure:"http"`
	Loader   LoaderConfig     `mapstructure:"loader"`
	Mapping  MappingConfig    `mapstructure:"mapping"`
	Sinks    []SinkConfig     `mapstructure:"sinks" validate:"required,min=1,dive"`
}

// PipelineSettings are the top-level pipeline keys. Durations are milliseconds.
type PipelineSettings struct {
	ConversionThreads     int `mapstructure:"conversionThreads" validate:"gte=0"`
	MaxConcurrentTasks    int `mapstructure:"maxConcurrentTasks" validate:"gte=0"`
	IngressBufferCapacity int `mapstructure:"ingressBufferCapacity" validate:"gte=0"`
	SinkBufferCapacity    int `mapstructure:"sinkBufferCapacity" validate:"gte=0"`

	SinkWriterBatchSize int `mapstructure:"sinkWriterBatchSize" validate:"gte=0"`
	SinkWriterMaxWaitMs int `mapstructure:"sinkWriterMaxWaitMs" validate:"gte=0"`
	SinkWriterPollMs    int `mapstructure:"sinkWriterPollMs" validate:"gte=0"`

	SinkWriteRatePerSecond float64 `mapstructure:"sinkWriteRatePerSecond" validate:"gte=0"`
	SinkWriteBurst         int     `mapstructure:"sinkWriteBurst" validate:"gte=0"`

	MaxRetries            int `mapstructure:"maxRetries" validate:"gte=0"`
	RetryInitialBackoffMs int `mapstructure:"retryInitialBackoffMs" validate:"gte=0"`
	RetryMaxBackoffMs     int `mapstructure:"retryMaxBackoffMs" validate:"gte=0"`

	CircuitBreakerMaxConsecutiveFailures int  `mapstructure:"circuitBreakerMaxConsecutiveFailures" validate:"gte=0"`
	CircuitBreakerResetTimeoutMs         int  `mapstructure:"circuitBreakerResetTimeoutMs" validate:"gte=0"`
	CircuitBreakerSingleProbe            bool `mapstructure:"circuitBreakerSingleProbe"`

	FlushTimeoutMs        int `mapstructure:"flushTimeoutMs" validate:"gte=0"`
	QuiescenceTimeoutMs   int `mapstructure:"quiescenceTimeoutMs" validate:"gte=0"`
	PoolShutdownTimeoutMs int `mapstructure:"poolShutdownTimeoutMs" validate:"gte=0"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error dpanic panic fatal"`
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
}

type MetricsConfig struct {
	Listen           string `mapstructure:"listen"`
	ReportIntervalMs int    `mapstructure:"reportIntervalMs" validate:"gte=0"`
	Namespace        string `mapstructure:"namespace"`
}

// HTTPConfig configures the operational endpoint started by "switchboard serve".
type HTTPConfig struct {
	Listen  string        `mapstructure:"listen"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoaderConfig struct {
	DSN             string        `mapstructure:"dsn" validate:"required"`
	RequireTLS      bool          `mapstructure:"requireTLS"`
	EntitiesTable   string        `mapstructure:"entitiesTable"`
	FieldsTable     string        `mapstructure:"fieldsTable"`
	RelationsTable  string        `mapstructure:"relationsTable"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type MappingConfig struct {
	File string `mapstructure:"file" validate:"required"`
}

// SinkConfig is one entry of sinks[]. Only the block matching Kind is read.
type SinkConfig struct {
	Name          string              `mapstructure:"name" validate:"required"`
	Kind          string              `mapstructure:"kind" validate:"required,oneof=elasticsearch sparql file s3 kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	SPARQL        SPARQLConfig        `mapstructure:"sparql"`
	File          FileConfig          `mapstructure:"file"`
	S3            S3Config            `mapstructure:"s3"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	APIKey       string   `mapstructure:"apiKey"`
	CACertFile   string   `mapstructure:"caCertFile"`
	DefaultIndex string   `mapstructure:"defaultIndex"`
	Refresh      string   `mapstructure:"refresh" validate:"omitempty,oneof=true false wait_for"`
	FlushBytes   int      `mapstructure:"flushBytes" validate:"gte=0"`
}

type SPARQLConfig struct {
	UpdateEndpoint    string        `mapstructure:"updateEndpoint"`
	QueryEndpoint     string        `mapstructure:"queryEndpoint"`
	Graph             string        `mapstructure:"graph"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	BearerToken       string        `mapstructure:"bearerToken"`
	PinnedCertFile    string        `mapstructure:"pinnedCertFile"`
	RecordsPerRequest int           `mapstructure:"recordsPerRequest" validate:"gte=0"`
	Yield             time.Duration `mapstructure:"yield"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type FileConfig struct {
	Directory   string `mapstructure:"directory"`
	Prefix      string `mapstructure:"prefix"`
	Format      string `mapstructure:"format" validate:"omitempty,oneof=ndjson json ntriples xml"`
	Compression string `mapstructure:"compression" validate:"omitempty,oneof=none gzip zstd snappy brotli lz4"`
}

type S3Config struct {
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"`
	ForcePathStyle  bool          `mapstructure:"forcePathStyle"`
	AccessKeyID     string        `mapstructure:"accessKeyId"`
	SecretAccessKey string        `mapstructure:"secretAccessKey"`
	SessionToken    string        `mapstructure:"sessionToken"`
	RoleARN         string        `mapstructure:"roleArn"`
	ExternalID      string        `mapstructure:"externalId"`
	RoleDuration    time.Duration `mapstructure:"roleDuration"`
	PrefixTemplate  string        `mapstructure:"prefixTemplate"`
	FileNameTmpl    string        `mapstructure:"fileNameTemplate"`
	Format          string        `mapstructure:"format" validate:"omitempty,oneof=ndjson json ntriples xml parquet"`
	Compression     string        `mapstructure:"compression" validate:"omitempty,oneof=none gzip zstd snappy brotli lz4"`
	SSE             string        `mapstructure:"sse" validate:"omitempty,oneof=AES256 aws:kms"`
	KMSKeyID        string        `mapstructure:"kmsKeyId"`
}

type KafkaConfig struct {
	Brokers       []string            `mapstructure:"brokers"`
	Topic         string              `mapstructure:"topic"`
	ClientID      string              `mapstructure:"clientId"`
	RequiredAcks  *kafka.RequiredAcks `mapstructure:"requiredAcks"`
	SASLMechanism string              `mapstructure:"saslMechanism"`
	Username      string              `mapstructure:"username"`
	Password      string              `mapstructure:"password"`
	CAFile        string              `mapstructure:"caFile"`
	ServerName    string              `mapstructure:"serverName"`
	Headers       map[string]string   `mapstructure:"headers"`
}

// PipelineConfig converts the millisecond settings into a types.PipelineConfig with defaults
// applied.
func (p PipelineSettings) PipelineConfig() types.PipelineConfig {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return types.PipelineConfig{
		ConversionThreads:             p.ConversionThreads,
		MaxConcurrentTasks:            p.MaxConcurrentTasks,
		IngressBufferCapacity:         p.IngressBufferCapacity,
		SinkBufferCapacity:            p.SinkBufferCapacity,
		BatchSize:                     p.SinkWriterBatchSize,
		MaxWait:                       ms(p.SinkWriterMaxWaitMs),
		PollInterval:                  ms(p.SinkWriterPollMs),
		WriteRatePerSecond:            p.SinkWriteRatePerSecond,
		WriteBurst:                    p.SinkWriteBurst,
		MaxRetries:                    p.MaxRetries,
		RetryInitialBackoff:           ms(p.RetryInitialBackoffMs),
		RetryMaxBackoff:               ms(p.RetryMaxBackoffMs),
		BreakerMaxConsecutiveFailures: p.CircuitBreakerMaxConsecutiveFailures,
		BreakerResetTimeout:           ms(p.CircuitBreakerResetTimeoutMs),
		BreakerSingleProbe:            p.CircuitBreakerSingleProbe,
		FlushTimeout:                  ms(p.FlushTimeoutMs),
		QuiescenceTimeout:             ms(p.QuiescenceTimeoutMs),
		PoolShutdownTimeout:           ms(p.PoolShutdownTimeoutMs),
	}.WithDefaults()
}
