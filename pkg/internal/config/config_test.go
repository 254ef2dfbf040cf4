package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"

	"github.com/joeydtaylor/switchboard/pkg/internal/config"
)

const sampleYAML = `
conversionThreads: 3
sinkWriterBatchSize: 50
sinkWriterMaxWaitMs: 200
circuitBreakerSingleProbe: true
log:
  level: debug
loader:
  dsn: postgres://indexer@db/app?sslmode=require
  entitiesTable: app.entities
  connMaxLifetime: 5m
mapping:
  file: mapping.yaml
sinks:
  - name: search
    kind: elasticsearch
    elasticsearch:
      addresses: [http://es:9200]
      defaultIndex: records
  - name: graph
    kind: sparql
    sparql:
      updateEndpoint: http://store/update
      yield: 10ms
  - name: feed
    kind: kafka
    kafka:
      brokers: broker-1:9092,broker-2:9092
      topic: records
      requiredAcks: one
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "switchboard.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDecodesFileAndDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Pipeline.ConversionThreads != 3 || cfg.Pipeline.SinkWriterBatchSize != 50 {
		t.Fatalf("unexpected pipeline settings: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.MaxRetries != 3 || cfg.Pipeline.SinkBufferCapacity != 1024 {
		t.Fatalf("expected defaults for unset keys, got %+v", cfg.Pipeline)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug log level, got %q", cfg.Log.Level)
	}
	if cfg.Loader.EntitiesTable != "app.entities" || cfg.Loader.FieldsTable != "entity_fields" {
		t.Fatalf("unexpected tables: %+v", cfg.Loader)
	}
	if cfg.Loader.ConnMaxLifetime != 5*time.Minute {
		t.Fatalf("expected 5m lifetime, got %v", cfg.Loader.ConnMaxLifetime)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Fatalf("expected default http timeout, got %v", cfg.HTTP.Timeout)
	}

	if len(cfg.Sinks) != 3 {
		t.Fatalf("expected 3 sinks, got %d", len(cfg.Sinks))
	}
	if cfg.Sinks[1].SPARQL.Yield != 10*time.Millisecond {
		t.Fatalf("expected 10ms yield, got %v", cfg.Sinks[1].SPARQL.Yield)
	}
	feed := cfg.Sinks[2].Kafka
	if len(feed.Brokers) != 2 || feed.Brokers[1] != "broker-2:9092" {
		t.Fatalf("expected comma separated brokers to split, got %v", feed.Brokers)
	}
	if feed.RequiredAcks == nil || *feed.RequiredAcks != kafka.RequireOne {
		t.Fatalf("expected RequireOne, got %v", feed.RequiredAcks)
	}
}

func TestPipelineConfigConvertsMilliseconds(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	pc := cfg.Pipeline.PipelineConfig()
	if pc.MaxWait != 200*time.Millisecond {
		t.Fatalf("expected 200ms max wait, got %v", pc.MaxWait)
	}
	if pc.BreakerResetTimeout != 30*time.Second || !pc.BreakerSingleProbe {
		t.Fatalf("unexpected breaker settings: %+v", pc)
	}
	if pc.PoolShutdownTimeout != 10*time.Second {
		t.Fatalf("expected 10s pool shutdown, got %v", pc.PoolShutdownTimeout)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("SWITCHBOARD_LOG_LEVEL", "warn")
	t.Setenv("SWITCHBOARD_SINKWRITERBATCHSIZE", "75")

	cfg, err := config.Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected env log level, got %q", cfg.Log.Level)
	}
	if cfg.Pipeline.SinkWriterBatchSize != 75 {
		t.Fatalf("expected env batch size, got %d", cfg.Pipeline.SinkWriterBatchSize)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SWITCHBOARD_LOG_LEVEL", "warn")

	v, err := config.New(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.AddFlags(fs)
	if err := fs.Parse([]string{"--log-level=error"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := config.BindFlags(v, fs); err != nil {
		t.Fatalf("bind flags: %v", err)
	}

	cfg, err := config.Decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("expected flag log level, got %q", cfg.Log.Level)
	}
	if cfg.Pipeline.ConversionThreads != 3 {
		t.Fatalf("unset flag must not override file, got %d", cfg.Pipeline.ConversionThreads)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	body := `
log:
  level: loud
sinks:
  - name: a
    kind: s3
    s3:
      sse: aws:kms
  - name: a
    kind: carrier-pigeon
`
	_, err := config.Load(writeConfig(t, body))
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	for _, want := range []string{
		"Log.Level must be one of",
		"Loader.DSN is required",
		"Mapping.File is required",
		"Sinks[1].Kind must be one of",
		"duplicate sink name",
		"s3.bucket is required",
		"s3.kmsKeyId is required",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestValidateRequiresSinks(t *testing.T) {
	body := `
loader:
  dsn: postgres://db/app
mapping:
  file: mapping.yaml
`
	if _, err := config.Load(writeConfig(t, body)); err == nil || !strings.Contains(err.Error(), "Sinks") {
		t.Fatalf("expected missing sinks error, got %v", err)
	}
}

func TestRejectsUnknownRequiredAcks(t *testing.T) {
	body := strings.Replace(sampleYAML, "requiredAcks: one", "requiredAcks: most", 1)
	if _, err := config.Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected decode error for requiredAcks")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
