package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SWITCHBOARD_LOG_LEVEL.
const EnvPrefix = "SWITCHBOARD"

// SetDefaults registers the default value of every scalar key on v.
func SetDefaults(v *viper.Viper) {
	threads := runtime.NumCPU()
	defaults := map[string]interface{}{
		"conversionThreads":                    threads,
		"maxConcurrentTasks":                   2 * threads,
		"ingressBufferCapacity":                1024,
		"sinkBufferCapacity":                   1024,
		"sinkWriterBatchSize":                  250,
		"sinkWriterMaxWaitMs":                  1000,
		"sinkWriterPollMs":                     500,
		"sinkWriteRatePerSecond":               0.0,
		"sinkWriteBurst":                       1,
		"maxRetries":                           3,
		"retryInitialBackoffMs":                100,
		"retryMaxBackoffMs":                    5000,
		"circuitBreakerMaxConsecutiveFailures": 5,
		"circuitBreakerResetTimeoutMs":         30000,
		"circuitBreakerSingleProbe":            false,
		"flushTimeoutMs":                       30000,
		"quiescenceTimeoutMs":                  30000,
		"poolShutdownTimeoutMs":                10000,

		"log.level":       "info",
		"log.development": false,
		"log.file":        "",

		"metrics.listen":           "",
		"metrics.reportIntervalMs": 0,
		"metrics.namespace":        "switchboard",

		"http.listen":  ":8080",
		"http.timeout": "30s",

		"loader.dsn":             "",
		"loader.requireTLS":      true,
		"loader.entitiesTable":   "entities",
		"loader.fieldsTable":     "entity_fields",
		"loader.relationsTable":  "entity_relations",
		"loader.maxOpenConns":    0,
		"loader.maxIdleConns":    0,
		"loader.connMaxLifetime": "0s",

		"mapping.file": "",
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// New returns a viper instance with defaults and environment overrides registered. file is
// optional; when set it must exist.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}
	return v, nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(DecodeHooks...))); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads file and the environment and returns the validated configuration.
func Load(file string) (*Config, error) {
	v, err := New(file)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}
