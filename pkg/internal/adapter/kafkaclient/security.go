package kafkaclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// SASLMechanism returns a kafka-go mechanism by name: PLAIN, SCRAM-SHA-256 (default) or
// SCRAM-SHA-512.
func SASLMechanism(mechanism, user, pass string) (sasl.Mechanism, error) {
	switch strings.ToUpper(strings.ReplaceAll(mechanism, "_", "-")) {
	case "", "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, user, pass)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, user, pass)
	case "PLAIN":
		return plain.Mechanism{Username: user, Password: pass}, nil
	default:
		return nil, fmt.Errorf("kafkaclient: unsupported SASL mechanism %q", mechanism)
	}
}

// TLSFromCAFile trusts only the certificate authorities in the PEM file at path.
func TLSFromCAFile(path, serverName string) (*tls.Config, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kafkaclient: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("kafkaclient: no certificates in %s", path)
	}
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    pool,
		ServerName: serverName,
	}, nil
}
