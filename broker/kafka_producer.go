package broker

import (
	"os"
	"strings"

	"github.com/Shopify/sarama"
)

// NewProducer connects a sync producer to the brokers listed in
// KAFKA_BROKERS (comma separated).
func NewProducer() (sarama.SyncProducer, error) {
	brokers := strings.Split(os.Getenv("KAFKA_BROKERS"), ",")

	config := sarama.NewConfig()
	// Return success is required for sync producer.
	config.Producer.Return.Successes = true

	return sarama.NewSyncProducer(brokers, config)
}
