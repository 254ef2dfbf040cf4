package builder

import (
	"crypto/tls"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/kafkaclient"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type KafkaClient = kafkaclient.Client

// NewKafkaClient creates a sink that publishes one keyed message per payload.
func NewKafkaClient(options ...types.Option[*KafkaClient]) (*KafkaClient, error) {
	return kafkaclient.NewClient(options...)
}

func KafkaWithBrokers(brokers ...string) types.Option[*KafkaClient] {
	return kafkaclient.WithBrokers(brokers...)
}

func KafkaWithTopic(topic string) types.Option[*KafkaClient] {
	return kafkaclient.WithTopic(topic)
}

func KafkaWithClientID(id string) types.Option[*KafkaClient] {
	return kafkaclient.WithClientID(id)
}

func KafkaWithTLS(cfg *tls.Config) types.Option[*KafkaClient] {
	return kafkaclient.WithTLS(cfg)
}

func KafkaWithSASL(mechanism sasl.Mechanism) types.Option[*KafkaClient] {
	return kafkaclient.WithSASL(mechanism)
}

func KafkaWithRequiredAcks(acks kafka.RequiredAcks) types.Option[*KafkaClient] {
	return kafkaclient.WithRequiredAcks(acks)
}

func KafkaWithBatchTimeout(d time.Duration) types.Option[*KafkaClient] {
	return kafkaclient.WithBatchTimeout(d)
}

func KafkaWithHeader(key, value string) types.Option[*KafkaClient] {
	return kafkaclient.WithHeader(key, value)
}

func KafkaWithLogger(l ...types.Logger) types.Option[*KafkaClient] {
	return kafkaclient.WithLogger(l...)
}

func KafkaWithComponentMetadata(name string, id string) types.Option[*KafkaClient] {
	return kafkaclient.WithComponentMetadata(name, id)
}

// KafkaSASLMechanism builds a SCRAM-SHA-256, SCRAM-SHA-512 or PLAIN mechanism.
func KafkaSASLMechanism(mechanism, user, pass string) (sasl.Mechanism, error) {
	return kafkaclient.SASLMechanism(mechanism, user, pass)
}

// KafkaTLSFromCAFile returns a TLS config trusting the PEM bundle at path.
func KafkaTLSFromCAFile(path, serverName string) (*tls.Config, error) {
	return kafkaclient.TLSFromCAFile(path, serverName)
}
