package config

const (
	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvAuthAPI         = "AUTH_API"
	EnvDoctorAPI       = "DOCTOR_API"
	EnvGatewayAPI      = "GATEWAY_API"
	EnvAppointmentAPI  = "APPOINTMENT_API"
	EnvNotificationURL = "NOTIFICATION_URL"
	EnvNotifyTransport = "NOTIFY_TRANSPORT"
	EnvUpstreamTimeout = "UPSTREAM_TIMEOUT"

	EnvSessionStore      = "SESSION_STORE"
	EnvSessionTTL        = "SESSION_TTL"
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvRedisAddr         = "REDIS_ADDR"
	EnvRedisPassword     = "REDIS_PASSWORD"
	EnvRedisDB           = "REDIS_DB"

	EnvCookieName   = "COOKIE_NAME"
	EnvCookieSecure = "COOKIE_SECURE"
	EnvSealKey      = "SEAL_KEY"

	EnvKafkaBrokers      = "KAFKA_BROKERS"
	EnvKafkaBookingTopic = "KAFKA_BOOKING_TOPIC"
	EnvKafkaGroupID      = "KAFKA_GROUP_ID"

	EnvReconnectInitial    = "RECONNECT_INITIAL"
	EnvReconnectMax        = "RECONNECT_MAX"
	EnvReconnectMaxElapsed = "RECONNECT_MAX_ELAPSED"

	EnvDisplayTimezone = "DISPLAY_TIMEZONE"

	EnvLoginRateLimit = "LOGIN_RATE_LIMIT"
	EnvLoginRateBurst = "LOGIN_RATE_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
