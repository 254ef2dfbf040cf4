package builder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/postgresclient"
	"github.com/joeydtaylor/switchboard/pkg/internal/config"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type (
	Config           = config.Config
	PipelineSettings = config.PipelineSettings
	SinkSettings     = config.SinkConfig
)

// ConfigEnvPrefix prefixes every environment override, e.g. SWITCHBOARD_LOG_LEVEL.
const ConfigEnvPrefix = config.EnvPrefix

// NewConfigReader returns a viper instance with defaults, environment overrides and, when file is
// set, the YAML file loaded. Bind flags to it with BindConfigFlags before DecodeConfig.
func NewConfigReader(file string) (*viper.Viper, error) {
	return config.New(file)
}

// AddConfigFlags registers the command line overrides on fs.
func AddConfigFlags(fs *pflag.FlagSet) {
	config.AddFlags(fs)
}

// BindConfigFlags binds flags registered by AddConfigFlags; only flags set explicitly override.
func BindConfigFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	return config.BindFlags(v, fs)
}

// DecodeConfig unmarshals and validates the configuration held by v.
func DecodeConfig(v *viper.Viper) (*Config, error) {
	return config.Decode(v)
}

// LoadConfig reads file (optional) and SWITCHBOARD_* environment variables and validates the result.
func LoadConfig(file string) (*Config, error) {
	return config.Load(file)
}

// LoggerFromConfig builds the process logger described by cfg.Log.
func LoggerFromConfig(cfg *Config) (types.Logger, error) {
	logger := NewLogger(
		LoggerWithLevel(cfg.Log.Level),
		LoggerWithDevelopment(cfg.Log.Development),
	)
	if cfg.Log.File != "" {
		if err := logger.AddSink("file", SinkConfig{
			Type:   string(FileSink),
			Config: map[string]interface{}{"path": cfg.Log.File},
		}); err != nil {
			return nil, err
		}
	}
	return logger, nil
}

// LoaderFromConfig builds the Postgres record loader described by cfg.Loader.
func LoaderFromConfig(cfg *Config, logger types.Logger) *PostgresLoader {
	lc := cfg.Loader
	return NewPostgresLoader(
		PostgresWithDSN(lc.DSN),
		PostgresWithRequireTLS(lc.RequireTLS),
		PostgresWithTables(postgresclient.Tables{
			Entities:  lc.EntitiesTable,
			Fields:    lc.FieldsTable,
			Relations: lc.RelationsTable,
		}),
		PostgresWithPoolSettings(postgresclient.PoolSettings{
			MaxOpenConns:    lc.MaxOpenConns,
			MaxIdleConns:    lc.MaxIdleConns,
			ConnMaxLifetime: lc.ConnMaxLifetime,
		}),
		PostgresWithLogger(logger),
	)
}

// MapperFromConfig loads and validates the mapping file named by cfg.Mapping.
func MapperFromConfig(cfg *Config) (*Mapper, error) {
	m, err := LoadMapping(cfg.Mapping.File)
	if err != nil {
		return nil, err
	}
	mp := NewMapper(m)
	if err := mp.Validate(); err != nil {
		return nil, fmt.Errorf("mapper: %w", err)
	}
	return mp, nil
}

// SinksFromConfig builds one client per configured sink. On error, clients already built are closed.
func SinksFromConfig(ctx context.Context, cfg *Config, logger types.Logger) ([]NamedSink, error) {
	sinks := make([]NamedSink, 0, len(cfg.Sinks))
	for _, sc := range cfg.Sinks {
		client, err := sinkFromConfig(ctx, sc, logger)
		if err != nil {
			_ = CloseSinks(sinks)
			return nil, fmt.Errorf("sink %s: %w", sc.Name, err)
		}
		sinks = append(sinks, Sink(sc.Name, client))
	}
	return sinks, nil
}

// CloseSinks closes every client and reports all failures.
func CloseSinks(sinks []NamedSink) error {
	var errs *multierror.Error
	for _, s := range sinks {
		if err := s.Client.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("sink %s: %w", s.Name, err))
		}
	}
	return errs.ErrorOrNil()
}

func sinkFromConfig(ctx context.Context, sc SinkSettings, logger types.Logger) (SinkClient, error) {
	switch sc.Kind {
	case "elasticsearch":
		return elasticsearchFromConfig(sc, logger)
	case "sparql":
		return sparqlFromConfig(sc, logger)
	case "file":
		return fileFromConfig(sc, logger)
	case "s3":
		return s3FromConfig(ctx, sc, logger)
	case "kafka":
		return kafkaFromConfig(sc, logger)
	}
	return nil, fmt.Errorf("unsupported sink kind %q", sc.Kind)
}

func elasticsearchFromConfig(sc SinkSettings, logger types.Logger) (SinkClient, error) {
	es := sc.Elasticsearch
	opts := []types.Option[*ElasticsearchClient]{
		ElasticsearchWithAddresses(es.Addresses...),
		ElasticsearchWithDefaultIndex(es.DefaultIndex),
		ElasticsearchWithRefresh(es.Refresh),
		ElasticsearchWithFlushBytes(es.FlushBytes),
		ElasticsearchWithLogger(logger),
		ElasticsearchWithComponentMetadata(sc.Name, ""),
	}
	if es.Username != "" {
		opts = append(opts, ElasticsearchWithBasicAuth(es.Username, es.Password))
	}
	if es.APIKey != "" {
		opts = append(opts, ElasticsearchWithAPIKey(es.APIKey))
	}
	if es.CACertFile != "" {
		pem, err := os.ReadFile(es.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate: %w", err)
		}
		opts = append(opts, ElasticsearchWithCACert(pem))
	}
	return NewElasticsearchClient(opts...)
}

func sparqlFromConfig(sc SinkSettings, logger types.Logger) (SinkClient, error) {
	sp := sc.SPARQL
	opts := []types.Option[*SPARQLClient]{
		SPARQLWithUpdateEndpoint(sp.UpdateEndpoint),
		SPARQLWithQueryEndpoint(sp.QueryEndpoint),
		SPARQLWithGraph(sp.Graph),
		SPARQLWithRecordsPerRequest(sp.RecordsPerRequest),
		SPARQLWithYield(sp.Yield),
		SPARQLWithTimeout(sp.Timeout),
		SPARQLWithLogger(logger),
		SPARQLWithComponentMetadata(sc.Name, ""),
	}
	switch {
	case sp.BearerToken != "":
		opts = append(opts, SPARQLWithBearerToken(sp.BearerToken))
	case sp.Username != "":
		opts = append(opts, SPARQLWithBasicAuth(sp.Username, sp.Password))
	}
	if sp.PinnedCertFile != "" {
		opts = append(opts, SPARQLWithPinnedCertificate(sp.PinnedCertFile))
	}
	return NewSPARQLClient(opts...)
}

func fileFromConfig(sc SinkSettings, logger types.Logger) (SinkClient, error) {
	fc := sc.File
	return NewFileClient(
		FileWithDirectory(fc.Directory),
		FileWithPrefix(fc.Prefix),
		FileWithFormat(fc.Format),
		FileWithCompression(fc.Compression),
		FileWithLogger(logger),
		FileWithComponentMetadata(sc.Name, ""),
	)
}

func s3FromConfig(ctx context.Context, sc SinkSettings, logger types.Logger) (SinkClient, error) {
	s := sc.S3
	cli, err := NewS3(ctx, S3Connection{
		Region:          s.Region,
		Endpoint:        s.Endpoint,
		ForcePathStyle:  s.ForcePathStyle,
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		SessionToken:    s.SessionToken,
		RoleARN:         s.RoleARN,
		RoleSessionName: "switchboard-" + sc.Name,
		ExternalID:      s.ExternalID,
		RoleDuration:    s.RoleDuration,
	})
	if err != nil {
		return nil, err
	}
	opts := []types.Option[*S3Client]{
		S3WithClientAndBucket(cli, s.Bucket),
		S3WithFileNameTemplate(s.FileNameTmpl),
		S3WithFormat(s.Format),
		S3WithCompression(s.Compression),
		S3WithSSE(s.SSE, s.KMSKeyID),
		S3WithLogger(logger),
		S3WithComponentMetadata(sc.Name, ""),
	}
	if s.PrefixTemplate != "" {
		opts = append(opts, S3WithPrefixTemplate(s.PrefixTemplate))
	}
	return NewS3Client(opts...)
}

func kafkaFromConfig(sc SinkSettings, logger types.Logger) (SinkClient, error) {
	k := sc.Kafka
	opts := []types.Option[*KafkaClient]{
		KafkaWithBrokers(k.Brokers...),
		KafkaWithTopic(k.Topic),
		KafkaWithClientID(k.ClientID),
		KafkaWithLogger(logger),
		KafkaWithComponentMetadata(sc.Name, ""),
	}
	if k.RequiredAcks != nil {
		opts = append(opts, KafkaWithRequiredAcks(*k.RequiredAcks))
	}
	for key, value := range k.Headers {
		opts = append(opts, KafkaWithHeader(key, value))
	}
	if k.CAFile != "" {
		tlsCfg, err := KafkaTLSFromCAFile(k.CAFile, k.ServerName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, KafkaWithTLS(tlsCfg))
	}
	if k.SASLMechanism != "" {
		mech, err := KafkaSASLMechanism(k.SASLMechanism, k.Username, k.Password)
		if err != nil {
			return nil, err
		}
		opts = append(opts, KafkaWithSASL(mech))
	}
	return NewKafkaClient(opts...)
}

// PipelineFromConfig builds the loader, mapper and sinks described by cfg and starts a pipeline
// over them. The pipeline's counters are registered with registerer when it is not nil.
func PipelineFromConfig(ctx context.Context, cfg *Config, logger types.Logger, registerer prometheus.Registerer) (*Pipeline, error) {
	mp, err := MapperFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	loader := LoaderFromConfig(cfg, logger)

	sinks, err := SinksFromConfig(ctx, cfg, logger)
	if err != nil {
		_ = loader.Close()
		return nil, err
	}

	opts := []types.Option[*Pipeline]{
		PipelineWithLogger(logger),
		PipelineWithOwnedLoader(),
		PipelineWithMeter(NewMeter(MeterWithNamespace(cfg.Metrics.Namespace), MeterWithLogger(logger))),
	}
	if registerer != nil {
		opts = append(opts, PipelineWithPrometheusRegisterer(registerer))
	}
	if cfg.Metrics.ReportIntervalMs > 0 {
		opts = append(opts, PipelineWithMonitor(msDuration(cfg.Metrics.ReportIntervalMs)))
	}

	p, err := NewPipeline(ctx, cfg.Pipeline.PipelineConfig(), loader, mp, sinks, opts...)
	if err != nil {
		_ = CloseSinks(sinks)
		_ = loader.Close()
		return nil, err
	}
	return p, nil
}

func msDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
