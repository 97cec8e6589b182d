package config

const (
	EnvStoreDriver = "STORE_DRIVER"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPostgresDSN      = "POSTGRES_DSN"
	EnvPostgresMaxConns = "POSTGRES_MAX_CONNS"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMatcherURL      = "MATCHER_URL"
	EnvCapacityURL     = "CAPACITY_URL"
	EnvReservationsURL = "RESERVATIONS_URL"
	EnvAuditorURL      = "AUDITOR_URL"
	EnvOrchestratorURL = "ORCHESTRATOR_URL"

	EnvCapacityGreenMax     = "CAPACITY_GREEN_MAX"
	EnvCapacityYellowMax    = "CAPACITY_YELLOW_MAX"
	EnvCapacitySafeFraction = "CAPACITY_SAFE_FRACTION"
	EnvCapacitySalesCap     = "CAPACITY_SALES_CAP_TOTAL"

	EnvMatchFlexStepDays      = "MATCH_FLEX_STEP_DAYS"
	EnvMatchMaxFlexDays       = "MATCH_MAX_FLEX_DAYS"
	EnvMatchAlternativesLimit = "MATCH_ALTERNATIVES_LIMIT"
	EnvMatchMaxAlternatives   = "MATCH_MAX_ALTERNATIVES"
	EnvMatchAlternativeScore  = "MATCH_ALTERNATIVE_SCORE"
	EnvMatchExactScore        = "MATCH_EXACT_SCORE"
	EnvMatchFlexBaseScore     = "MATCH_FLEX_BASE_SCORE"
	EnvMatchCityBonus         = "MATCH_CITY_BONUS"
	EnvMatchCountryBonus      = "MATCH_COUNTRY_BONUS"
	EnvMatchCategoryBonus     = "MATCH_CATEGORY_BONUS"
	EnvMatchOccupancyBonus    = "MATCH_OCCUPANCY_BONUS"
	EnvMatchOccupancySlack    = "MATCH_OCCUPANCY_SLACK"
	EnvMatchFetchConcurrency  = "MATCH_FETCH_CONCURRENCY"

	EnvReservationLockTTL = "RESERVATION_LOCK_TTL"

	EnvCapacityTopic    = "CAPACITY_TOPIC"
	EnvReservationTopic = "RESERVATION_TOPIC"
	EnvDLQTopic         = "DLQ_TOPIC"
	EnvAuditorGroupID   = "AUDITOR_GROUP_ID"
	EnvReplicaGroupID   = "REPLICA_GROUP_ID"
)
