package diag

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

// KafkaSink publishes diagnostics to a Kafka topic so downstream reconciliation
// tooling can consume them. Messages are keyed by order id.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaSink wraps an existing producer. The producer must be configured
// with Producer.Return.Successes = true (a SyncProducer requirement).
func NewKafkaSink(producer sarama.SyncProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

// NewKafkaProducer builds a SyncProducer with the settings this sink needs.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	return sarama.NewSyncProducer(brokers, config)
}

// Report publishes the diagnostic. Publish failures are logged, not returned:
// a diagnostics outage must never block checkout.
func (s *KafkaSink) Report(_ context.Context, d Diagnostic) {
	if d.RecordedAt.IsZero() {
		d.RecordedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(d)
	if err != nil {
		log.Printf("diag: marshal diagnostic for order %d: %v", d.OrderID, err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(d.OrderID, 10)),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		log.Printf("diag: publish diagnostic for order %d: %v", d.OrderID, err)
	}
}
