package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":          "log.level",
	"log-file":           "log.file",
	"conversion-threads": "conversionThreads",
	"batch-size":         "sinkWriterBatchSize",
	"loader-dsn":         "loader.dsn",
	"mapping-file":       "mapping.file",
	"metrics-listen":     "metrics.listen",
	"http-listen":        "http.listen",
}

// AddFlags registers the overridable settings on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-file", "", "append JSON logs to this file instead of stdout")
	fs.Int("conversion-threads", 0, "number of conversion workers")
	fs.Int("batch-size", 0, "maximum payloads per sink write")
	fs.String("loader-dsn", "", "Postgres connection string")
	fs.String("mapping-file", "", "path to the YAML mapping file")
	fs.String("metrics-listen", "", "address for the Prometheus endpoint")
	fs.String("http-listen", "", "address for the operational HTTP server")
}

// BindFlags binds the flags registered by AddFlags to their keys. A flag only overrides the file
// and environment when it was set explicitly.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: bind flag %s: %w", name, err)
		}
	}
	return nil
}
