package kafka_config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the broker settings shared by the capacity, reservation and auditor services.
// With Enabled=false services publish through a no-op publisher and the auditor refuses to start.
type Config struct {
	Enabled bool
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int    // -1 all replicas, 0 none, 1 leader
	ProducerCompression  string // none, gzip, snappy, lz4, zstd
	ProducerAsync        bool

	ConsumerStartOffset       int64 // -1 newest, -2 oldest
	ConsumerMinBytes          int
	ConsumerMaxBytes          int
	ConsumerMaxWait           time.Duration
	ConsumerCommitInterval    time.Duration
	ConsumerHeartbeatInterval time.Duration
	ConsumerSessionTimeout    time.Duration
	ConsumerRebalanceTimeout  time.Duration
	ConsumerMaxRetries        int
	ConsumerRetryBackoff      time.Duration

	EnableMiddleware bool
}

var (
	compressions = map[string]bool{"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true}
	ackLevels    = map[int]bool{-1: true, 0: true, 1: true}
)

// Load starts from Default and overrides every field that has a parseable
// environment variable set. Unparseable values keep the default.
func Load() (*Config, error) {
	cfg := Default()

	cfg.Enabled = envOr(EnvKafkaEnabled, cfg.Enabled, strconv.ParseBool)
	if raw := os.Getenv(EnvKafkaBrokers); raw != "" {
		cfg.Brokers = ParseBrokers(raw)
	}

	cfg.ProducerMaxAttempts = envOr(EnvKafkaProducerMaxAttempts, cfg.ProducerMaxAttempts, strconv.Atoi)
	cfg.ProducerBatchTimeout = envOr(EnvKafkaProducerBatchTimeout, cfg.ProducerBatchTimeout, time.ParseDuration)
	cfg.ProducerRequireAcks = envOr(EnvKafkaProducerRequireAcks, cfg.ProducerRequireAcks, strconv.Atoi)
	cfg.ProducerCompression = envOr(EnvKafkaProducerCompression, cfg.ProducerCompression, asString)
	cfg.ProducerAsync = envOr(EnvKafkaProducerAsync, cfg.ProducerAsync, strconv.ParseBool)

	cfg.ConsumerStartOffset = envOr(EnvKafkaConsumerStartOffset, cfg.ConsumerStartOffset, parseInt64)
	cfg.ConsumerMinBytes = envOr(EnvKafkaConsumerMinBytes, cfg.ConsumerMinBytes, strconv.Atoi)
	cfg.ConsumerMaxBytes = envOr(EnvKafkaConsumerMaxBytes, cfg.ConsumerMaxBytes, strconv.Atoi)
	cfg.ConsumerMaxWait = envOr(EnvKafkaConsumerMaxWait, cfg.ConsumerMaxWait, time.ParseDuration)
	cfg.ConsumerCommitInterval = envOr(EnvKafkaConsumerCommitInterval, cfg.ConsumerCommitInterval, time.ParseDuration)
	cfg.ConsumerHeartbeatInterval = envOr(EnvKafkaConsumerHeartbeatInterval, cfg.ConsumerHeartbeatInterval, time.ParseDuration)
	cfg.ConsumerSessionTimeout = envOr(EnvKafkaConsumerSessionTimeout, cfg.ConsumerSessionTimeout, time.ParseDuration)
	cfg.ConsumerRebalanceTimeout = envOr(EnvKafkaConsumerRebalanceTimeout, cfg.ConsumerRebalanceTimeout, time.ParseDuration)
	cfg.ConsumerMaxRetries = envOr(EnvKafkaConsumerMaxRetries, cfg.ConsumerMaxRetries, strconv.Atoi)
	cfg.ConsumerRetryBackoff = envOr(EnvKafkaConsumerRetryBackoff, cfg.ConsumerRetryBackoff, time.ParseDuration)

	cfg.EnableMiddleware = envOr(EnvKafkaEnableMiddleware, cfg.EnableMiddleware, strconv.ParseBool)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in defaults without reading the environment.
func Default() *Config {
	return &Config{
		Enabled:                   DefaultKafkaEnabled,
		Brokers:                   ParseBrokers(DefaultKafkaBrokers),
		ProducerMaxAttempts:       DefaultProducerMaxAttempts,
		ProducerBatchTimeout:      DefaultProducerBatchTimeout,
		ProducerRequireAcks:       DefaultProducerRequireAcks,
		ProducerCompression:       DefaultProducerCompression,
		ProducerAsync:             DefaultProducerAsync,
		ConsumerStartOffset:       DefaultConsumerStartOffset,
		ConsumerMinBytes:          DefaultConsumerMinBytes,
		ConsumerMaxBytes:          DefaultConsumerMaxBytes,
		ConsumerMaxWait:           DefaultConsumerMaxWait,
		ConsumerCommitInterval:    DefaultConsumerCommitInterval,
		ConsumerHeartbeatInterval: DefaultConsumerHeartbeatInterval,
		ConsumerSessionTimeout:    DefaultConsumerSessionTimeout,
		ConsumerRebalanceTimeout:  DefaultConsumerRebalanceTimeout,
		ConsumerMaxRetries:        DefaultConsumerMaxRetries,
		ConsumerRetryBackoff:      DefaultConsumerRetryBackoff,
		EnableMiddleware:          DefaultEnableMiddleware,
	}
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// Validate reports every problem at once. A disabled config is always valid.
func (cfg *Config) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	check(len(cfg.Brokers) > 0, "at least one broker is required")
	check(cfg.ProducerMaxAttempts > 0, "ProducerMaxAttempts must be positive, got %d", cfg.ProducerMaxAttempts)
	check(cfg.ProducerBatchTimeout > 0, "ProducerBatchTimeout must be positive, got %s", cfg.ProducerBatchTimeout)
	check(compressions[cfg.ProducerCompression], "ProducerCompression %q is not one of none, gzip, snappy, lz4, zstd", cfg.ProducerCompression)
	check(ackLevels[cfg.ProducerRequireAcks], "ProducerRequireAcks must be -1, 0 or 1, got %d", cfg.ProducerRequireAcks)
	check(cfg.ConsumerStartOffset >= -2, "ConsumerStartOffset must be -1, -2 or a concrete offset, got %d", cfg.ConsumerStartOffset)
	check(cfg.ConsumerMinBytes > 0, "ConsumerMinBytes must be positive, got %d", cfg.ConsumerMinBytes)
	check(cfg.ConsumerMaxBytes >= cfg.ConsumerMinBytes, "ConsumerMaxBytes %d is below ConsumerMinBytes %d", cfg.ConsumerMaxBytes, cfg.ConsumerMinBytes)

	for name, d := range map[string]time.Duration{
		"ConsumerMaxWait":           cfg.ConsumerMaxWait,
		"ConsumerCommitInterval":    cfg.ConsumerCommitInterval,
		"ConsumerHeartbeatInterval": cfg.ConsumerHeartbeatInterval,
		"ConsumerSessionTimeout":    cfg.ConsumerSessionTimeout,
		"ConsumerRebalanceTimeout":  cfg.ConsumerRebalanceTimeout,
	} {
		check(d > 0, "%s must be positive, got %s", name, d)
	}

	check(cfg.ConsumerMaxRetries >= 0, "ConsumerMaxRetries cannot be negative, got %d", cfg.ConsumerMaxRetries)
	check(cfg.ConsumerRetryBackoff >= 0, "ConsumerRetryBackoff cannot be negative, got %s", cfg.ConsumerRetryBackoff)

	if len(problems) > 0 {
		return fmt.Errorf("invalid kafka configuration: %w", errors.Join(problems...))
	}
	return nil
}

func (cfg *Config) LogConfiguration(logFunc func(msg string, keysAndValues ...any)) {
	if logFunc == nil {
		return
	}

	logFunc("kafka configuration loaded",
		"enabled", cfg.Enabled,
		"brokers", cfg.Brokers,
		"producer_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"producer_async", cfg.ProducerAsync,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"consumer_retry_backoff", cfg.ConsumerRetryBackoff,
		"middleware", cfg.EnableMiddleware,
	)
}

func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func asString(s string) (string, error) { return s, nil }

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
