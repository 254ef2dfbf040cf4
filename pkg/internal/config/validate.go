package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var validate = validator.New()

// Validate checks field constraints and then the settings each sink kind needs. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: %w", err)
		}
		for _, fe := range verrs {
			errs = multierror.Append(errs, fieldError(fe))
		}
	}

	seen := make(map[string]bool, len(c.Sinks))
	for i, s := range c.Sinks {
		if s.Name != "" && seen[s.Name] {
			errs = multierror.Append(errs, fmt.Errorf("sinks[%d]: duplicate sink name %q", i, s.Name))
		}
		seen[s.Name] = true
		for _, err := range s.kindErrors() {
			errs = multierror.Append(errs, fmt.Errorf("sinks[%d] (%s): %w", i, s.Name, err))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", ns)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %v", ns, fe.Param(), fe.Value())
	case "min":
		return fmt.Errorf("%s needs at least %s entries", ns, fe.Param())
	default:
		return fmt.Errorf("%s failed %s=%s", ns, fe.Tag(), fe.Param())
	}
}

func (s SinkConfig) kindErrors() []error {
	var errs []error
	need := func(ok bool, what string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s is required", what))
		}
	}
	switch s.Kind {
	case "elasticsearch":
		need(len(s.Elasticsearch.Addresses) > 0, "elasticsearch.addresses")
	case "sparql":
		need(s.SPARQL.UpdateEndpoint != "", "sparql.updateEndpoint")
	case "file":
		need(s.File.Directory != "", "file.directory")
	case "s3":
		need(s.S3.Bucket != "", "s3.bucket")
		need(s.S3.Region != "", "s3.region")
		if strings.EqualFold(s.S3.SSE, "aws:kms") {
			need(s.S3.KMSKeyID != "", "s3.kmsKeyId")
		}
	case "kafka":
		need(len(s.Kafka.Brokers) > 0, "kafka.brokers")
		need(s.Kafka.Topic != "", "kafka.topic")
		if s.Kafka.SASLMechanism != "" {
			need(s.Kafka.Username != "", "kafka.username")
		}
	}
	return errs
}
