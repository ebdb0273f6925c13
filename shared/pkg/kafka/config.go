package kafka

import (
	"time"
)

// Config holds Kafka producer configuration
type Config struct {
	Brokers  []string
	ClientID string

	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:  []string{"localhost:9092"},
		ClientID: "opscenter",

		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		RequiredAcks: 1,
	}
}

// Topics contains the Kafka topic names used by the command center
var Topics = struct {
	OpsCenterEvents string
}{
	OpsCenterEvents: "portal.opscenter.events",
}
