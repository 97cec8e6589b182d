package kafka_config

import (
	"strings"
	"testing"
)

func TestParseBrokers(t *testing.T) {
	got := ParseBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Errorf("ParseBrokers = %v", got)
	}
	if len(ParseBrokers("")) != 0 {
		t.Error("empty input should yield no brokers")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Brokers = nil
	cfg.ProducerCompression = "brotli"
	cfg.ProducerRequireAcks = 2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"broker", "ProducerCompression", "ProducerRequireAcks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestValidateSkippedWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.Enabled = false
	cfg.Brokers = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should not be validated: %v", err)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "a:1,b:2")
	t.Setenv(EnvKafkaConsumerMaxRetries, "5")
	t.Setenv(EnvKafkaConsumerRetryBackoff, "1s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.ConsumerMaxRetries != 5 || cfg.ConsumerRetryBackoff.String() != "1s" {
		t.Errorf("unexpected config %+v", cfg)
	}
}
