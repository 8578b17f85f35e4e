package config

import "time"

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
	StoreRedis  = "redis"

	TransportSignalR = "signalr"
	TransportKafka   = "kafka"
	TransportNone    = "none"
)

const (
	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultAuthAPI         = "http://localhost:7001/api"
	DefaultDoctorAPI       = "http://localhost:7227/doctor"
	DefaultGatewayAPI      = "http://localhost:7000"
	DefaultAppointmentAPI  = "http://localhost:7074/api"
	DefaultNotificationURL = "ws://localhost:7075/notificationhub"
	DefaultNotifyTransport = TransportSignalR
	DefaultUpstreamTimeout = 10 * time.Second

	DefaultSessionStore      = StoreMemory
	DefaultSessionTTL        = 7 * 24 * time.Hour
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "clinicportal"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisDB           = 0

	DefaultCookieName = "portal_sid"

	DefaultKafkaBookingTopic = "clinic.bookings"
	DefaultKafkaGroupID      = "clinicportal-doctor-views"

	DefaultReconnectInitial    = 1 * time.Second
	DefaultReconnectMax        = 30 * time.Second
	DefaultReconnectMaxElapsed = 10 * time.Minute

	DefaultDisplayTimezone = "Asia/Ho_Chi_Minh"

	DefaultLoginRateLimit = 1.0
	DefaultLoginRateBurst = 5

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 10 * time.Minute
	DefaultMaxRequestSize = 5 * 1024 * 1024 // avatars travel through the admin form

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 0 // SSE streams stay open
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDoctorPageSize = 10
	MaxDoctorPageSize     = 100
)
