package kafka

import (
	"strings"
	"time"
)

// ProducerConfig holds configuration for the alert push producer.
type ProducerConfig struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// ConsumerConfig holds configuration for the assessment event consumer.
type ConsumerConfig struct {
	Brokers         string
	GroupID         string
	Topics          []string
	AutoOffsetReset string
}

func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 30 * time.Second,
	}
}

func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		GroupID:         "talentgate-assessments",
		AutoOffsetReset: "earliest",
	}
}

// SplitBrokers parses a comma separated broker list, dropping blanks.
func SplitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
