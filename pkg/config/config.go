package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"weekchain/pkg/client"
	"weekchain/pkg/logger"
	"weekchain/pkg/sanitizer"
)

type Config struct {
	StoreDriver string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	PostgresDSN      string
	PostgresMaxConns int

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MatcherURL      string
	CapacityURL     string
	ReservationsURL string
	AuditorURL      string
	OrchestratorURL string

	CapacityGreenMax     float64
	CapacityYellowMax    float64
	CapacitySafeFraction float64
	CapacitySalesCap     int

	MatchFlexStepDays      int
	MatchMaxFlexDays       int
	MatchAlternativesLimit int
	MatchMaxAlternatives   int
	MatchAlternativeScore  int
	MatchExactScore        int
	MatchFlexBaseScore     int
	MatchCityBonus         int
	MatchCountryBonus      int
	MatchCategoryBonus     int
	MatchOccupancyBonus    int
	MatchOccupancySlack    int
	MatchFetchConcurrency  int

	ReservationLockTTL time.Duration

	CapacityTopic    string
	ReservationTopic string
	DLQTopic         string
	AuditorGroupID   string
	ReplicaGroupID   string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		StoreDriver: getEnvStr(EnvStoreDriver, DefaultStoreDriver),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		PostgresDSN:      getEnvStr(EnvPostgresDSN, DefaultPostgresDSN),
		PostgresMaxConns: getEnvNum(EnvPostgresMaxConns, DefaultPostgresMaxConns),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		MatcherURL:      sanitizer.SanitizeBaseURL(getEnvStr(EnvMatcherURL, DefaultMatcherURL)),
		CapacityURL:     sanitizer.SanitizeBaseURL(getEnvStr(EnvCapacityURL, DefaultCapacityURL)),
		ReservationsURL: sanitizer.SanitizeBaseURL(getEnvStr(EnvReservationsURL, DefaultReservationsURL)),
		AuditorURL:      sanitizer.SanitizeBaseURL(getEnvStr(EnvAuditorURL, DefaultAuditorURL)),
		OrchestratorURL: sanitizer.SanitizeBaseURL(getEnvStr(EnvOrchestratorURL, DefaultOrchestratorURL)),

		CapacityGreenMax:     getEnvFloat(EnvCapacityGreenMax, DefaultCapacityGreenMax),
		CapacityYellowMax:    getEnvFloat(EnvCapacityYellowMax, DefaultCapacityYellowMax),
		CapacitySafeFraction: getEnvFloat(EnvCapacitySafeFraction, DefaultCapacitySafeFraction),
		CapacitySalesCap:     getEnvNum(EnvCapacitySalesCap, DefaultCapacitySalesCap),

		MatchFlexStepDays:      getEnvNum(EnvMatchFlexStepDays, DefaultMatchFlexStepDays),
		MatchMaxFlexDays:       getEnvNum(EnvMatchMaxFlexDays, DefaultMatchMaxFlexDays),
		MatchAlternativesLimit: getEnvNum(EnvMatchAlternativesLimit, DefaultMatchAlternativesLimit),
		MatchMaxAlternatives:   getEnvNum(EnvMatchMaxAlternatives, DefaultMatchMaxAlternatives),
		MatchAlternativeScore:  getEnvNum(EnvMatchAlternativeScore, DefaultMatchAlternativeScore),
		MatchExactScore:        getEnvNum(EnvMatchExactScore, DefaultMatchExactScore),
		MatchFlexBaseScore:     getEnvNum(EnvMatchFlexBaseScore, DefaultMatchFlexBaseScore),
		MatchCityBonus:         getEnvNum(EnvMatchCityBonus, DefaultMatchCityBonus),
		MatchCountryBonus:      getEnvNum(EnvMatchCountryBonus, DefaultMatchCountryBonus),
		MatchCategoryBonus:     getEnvNum(EnvMatchCategoryBonus, DefaultMatchCategoryBonus),
		MatchOccupancyBonus:    getEnvNum(EnvMatchOccupancyBonus, DefaultMatchOccupancyBonus),
		MatchOccupancySlack:    getEnvNum(EnvMatchOccupancySlack, DefaultMatchOccupancySlack),
		MatchFetchConcurrency:  getEnvNum(EnvMatchFetchConcurrency, DefaultMatchFetchConcurrency),

		ReservationLockTTL: getEnvDuration(EnvReservationLockTTL, DefaultReservationLockTTL),

		CapacityTopic:    getEnvStr(EnvCapacityTopic, DefaultCapacityTopic),
		ReservationTopic: getEnvStr(EnvReservationTopic, DefaultReservationTopic),
		DLQTopic:         getEnvStr(EnvDLQTopic, DefaultDLQTopic),
		AuditorGroupID:   getEnvStr(EnvAuditorGroupID, DefaultAuditorGroupID),
		ReplicaGroupID:   getEnvStr(EnvReplicaGroupID, DefaultReplicaGroupID),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// Default returns a configuration populated with defaults only. Useful for tests and tools.
func Default(log *logger.Logger) *Config {
	return &Config{
		StoreDriver:            DefaultStoreDriver,
		MongoDatabaseName:      DefaultMongoDatabaseName,
		ReadTimeout:            DefaultReadTimeout,
		WriteTimeout:           DefaultWriteTimeout,
		CapacityGreenMax:       DefaultCapacityGreenMax,
		CapacityYellowMax:      DefaultCapacityYellowMax,
		CapacitySafeFraction:   DefaultCapacitySafeFraction,
		CapacitySalesCap:       DefaultCapacitySalesCap,
		MatchFlexStepDays:      DefaultMatchFlexStepDays,
		MatchMaxFlexDays:       DefaultMatchMaxFlexDays,
		MatchAlternativesLimit: DefaultMatchAlternativesLimit,
		MatchMaxAlternatives:   DefaultMatchMaxAlternatives,
		MatchAlternativeScore:  DefaultMatchAlternativeScore,
		MatchExactScore:        DefaultMatchExactScore,
		MatchFlexBaseScore:     DefaultMatchFlexBaseScore,
		MatchCityBonus:         DefaultMatchCityBonus,
		MatchCountryBonus:      DefaultMatchCountryBonus,
		MatchCategoryBonus:     DefaultMatchCategoryBonus,
		MatchOccupancyBonus:    DefaultMatchOccupancyBonus,
		MatchOccupancySlack:    DefaultMatchOccupancySlack,
		MatchFetchConcurrency:  DefaultMatchFetchConcurrency,
		ReservationLockTTL:     DefaultReservationLockTTL,
		CapacityTopic:          DefaultCapacityTopic,
		ReservationTopic:       DefaultReservationTopic,
		DLQTopic:               DefaultDLQTopic,
		AuditorGroupID:         DefaultAuditorGroupID,
		ReplicaGroupID:         DefaultReplicaGroupID,
		MatcherURL:             DefaultMatcherURL,
		CapacityURL:            DefaultCapacityURL,
		ReservationsURL:        DefaultReservationsURL,
		AuditorURL:             DefaultAuditorURL,
		OrchestratorURL:        DefaultOrchestratorURL,
		Log:                    log,
		Client:                 client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetPostgres() {
	cfg.Client.SetPostgres(cfg.Log, cfg.PostgresDSN, int32(cfg.PostgresMaxConns), cfg.MongoConnTimeout)
}

// SetStore connects the configured primary store. Mongo is always connected because
// locks, the tier ledger and snapshots live there.
func (cfg *Config) SetStore() {
	cfg.SetMongo()
	if cfg.StoreDriver == StoreDriverPostgres {
		cfg.SetPostgres()
	}
}

var (
	mongoSchemeRe    = regexp.MustCompile(`^mongodb(\+srv)?://`)
	postgresSchemeRe = regexp.MustCompile(`^postgres(ql)?://`)
)

// problems collects validation failures and renders them as a numbered list.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("configuration validation failed:\n")
	for i, msg := range p {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, msg)
	}
	return stderrors.New(b.String())
}

func (cfg *Config) Validate() error {
	var p problems

	port, err := strconv.Atoi(cfg.Port)
	p.check(err == nil && port >= 1 && port <= 65535, "Port must be between 1 and 65535, got: %s", cfg.Port)
	p.check(cfg.StoreDriver == StoreDriverMongo || cfg.StoreDriver == StoreDriverPostgres,
		"StoreDriver must be %s or %s, got: %s", StoreDriverMongo, StoreDriverPostgres, cfg.StoreDriver)

	p.check(mongoSchemeRe.MatchString(cfg.MongoURI), "MongoURI must start with mongodb:// or mongodb+srv://, got: %s", redactMongoURI(cfg.MongoURI))
	p.check(cfg.MongoDatabaseName != "", "MongoDatabaseName cannot be empty")

	if cfg.StoreDriver == StoreDriverPostgres {
		p.check(postgresSchemeRe.MatchString(cfg.PostgresDSN), "PostgresDSN must start with postgres:// or postgresql://")
		p.check(cfg.PostgresMaxConns > 0, "PostgresMaxConns must be positive, got: %d", cfg.PostgresMaxConns)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"ReservationLockTTL", cfg.ReservationLockTTL},
	} {
		p.check(d.value > 0, "%s must be positive, got: %s", d.name, d.value)
	}
	p.check(cfg.RateLimitRequests > 0, "RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests)
	p.check(cfg.MaxRequestSize > 0, "MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize)

	for _, u := range []struct{ name, value string }{
		{"MatcherURL", cfg.MatcherURL},
		{"CapacityURL", cfg.CapacityURL},
		{"ReservationsURL", cfg.ReservationsURL},
		{"AuditorURL", cfg.AuditorURL},
		{"OrchestratorURL", cfg.OrchestratorURL},
	} {
		p.check(u.value != "", "%s must be a valid http(s) URL", u.name)
	}

	cfg.validatePolicy(&p)

	p.check(cfg.CapacityTopic != "" && cfg.ReservationTopic != "", "CapacityTopic and ReservationTopic cannot be empty")

	return p.err()
}

// validatePolicy covers the traffic light thresholds and the match scoring knobs.
func (cfg *Config) validatePolicy(p *problems) {
	p.check(cfg.CapacityGreenMax > 0 && cfg.CapacityGreenMax < 1, "CapacityGreenMax must be in (0, 1), got: %v", cfg.CapacityGreenMax)
	p.check(cfg.CapacityYellowMax > cfg.CapacityGreenMax && cfg.CapacityYellowMax <= 1,
		"CapacityYellowMax (%v) must be greater than CapacityGreenMax (%v) and at most 1", cfg.CapacityYellowMax, cfg.CapacityGreenMax)
	p.check(cfg.CapacitySafeFraction > 0 && cfg.CapacitySafeFraction <= 1, "CapacitySafeFraction must be in (0, 1], got: %v", cfg.CapacitySafeFraction)
	p.check(cfg.CapacitySalesCap >= 0, "CapacitySalesCap cannot be negative, got: %d", cfg.CapacitySalesCap)

	p.check(cfg.MatchFlexStepDays > 0, "MatchFlexStepDays must be positive, got: %d", cfg.MatchFlexStepDays)
	p.check(cfg.MatchMaxFlexDays >= 0, "MatchMaxFlexDays cannot be negative, got: %d", cfg.MatchMaxFlexDays)
	p.check(cfg.MatchAlternativesLimit > 0, "MatchAlternativesLimit must be positive, got: %d", cfg.MatchAlternativesLimit)
	p.check(cfg.MatchMaxAlternatives >= cfg.MatchAlternativesLimit,
		"MatchMaxAlternatives (%d) must be >= MatchAlternativesLimit (%d)", cfg.MatchMaxAlternatives, cfg.MatchAlternativesLimit)
	p.check(cfg.MatchFetchConcurrency > 0, "MatchFetchConcurrency must be positive, got: %d", cfg.MatchFetchConcurrency)
	p.check(cfg.MatchOccupancySlack >= 0, "MatchOccupancySlack cannot be negative, got: %d", cfg.MatchOccupancySlack)
	p.check(cfg.MatchFlexBaseScore < cfg.MatchExactScore,
		"MatchFlexBaseScore (%d) must be below MatchExactScore (%d)", cfg.MatchFlexBaseScore, cfg.MatchExactScore)
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_driver", cfg.StoreDriver,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"postgres_dsn", redactPostgresDSN(cfg.PostgresDSN),
		"postgres_max_conns", cfg.PostgresMaxConns,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"matcher_url", cfg.MatcherURL,
		"capacity_url", cfg.CapacityURL,
		"reservations_url", cfg.ReservationsURL,
		"capacity_green_max", cfg.CapacityGreenMax,
		"capacity_yellow_max", cfg.CapacityYellowMax,
		"capacity_safe_fraction", cfg.CapacitySafeFraction,
		"capacity_sales_cap", cfg.CapacitySalesCap,
		"match_flex_step_days", cfg.MatchFlexStepDays,
		"match_max_flex_days", cfg.MatchMaxFlexDays,
		"match_alternatives_limit", cfg.MatchAlternativesLimit,
		"match_fetch_concurrency", cfg.MatchFetchConcurrency,
		"reservation_lock_ttl", cfg.ReservationLockTTL,
		"capacity_topic", cfg.CapacityTopic,
		"reservation_topic", cfg.ReservationTopic,
		"auditor_group_id", cfg.AuditorGroupID,
		"replica_group_id", cfg.ReplicaGroupID,
	)
}

var (
	mongoCredentialsRe    = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	postgresCredentialsRe = regexp.MustCompile(`(postgres(ql)?://)[^:]+:[^@]+@`)
)

func redactMongoURI(uri string) string {
	return mongoCredentialsRe.ReplaceAllString(uri, "${1}***:***@")
}

func redactPostgresDSN(dsn string) string {
	return postgresCredentialsRe.ReplaceAllString(dsn, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	return envOr(key, fallback, func(s string) (string, error) { return s, nil })
}

func getEnvNum(key string, fallback int) int {
	return envOr(key, fallback, strconv.Atoi)
}

func getEnvFloat(key string, fallback float64) float64 {
	return envOr(key, fallback, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	return envOr(key, fallback, time.ParseDuration)
}

// envOr returns fallback when key is unset or does not parse.
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

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
