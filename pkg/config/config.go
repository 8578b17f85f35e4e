package config

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"clinicportal/pkg/locale"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/sanitizer"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	AuthAPI         string        `mapstructure:"AUTH_API"`
	DoctorAPI       string        `mapstructure:"DOCTOR_API"`
	GatewayAPI      string        `mapstructure:"GATEWAY_API"`
	AppointmentAPI  string        `mapstructure:"APPOINTMENT_API"`
	NotificationURL string        `mapstructure:"NOTIFICATION_URL"`
	NotifyTransport string        `mapstructure:"NOTIFY_TRANSPORT"`
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	SessionStore      string        `mapstructure:"SESSION_STORE"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	MongoURI          string        `mapstructure:"MONGO_URI"`
	MongoDatabaseName string        `mapstructure:"MONGO_DATABASE_NAME"`
	MongoConnTimeout  time.Duration `mapstructure:"MONGO_CONN_TIMEOUT"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`

	CookieName   string `mapstructure:"COOKIE_NAME"`
	CookieSecure bool   `mapstructure:"COOKIE_SECURE"`
	SealKey      string `mapstructure:"SEAL_KEY"`

	KafkaBrokers      []string `mapstructure:"-"`
	KafkaBookingTopic string   `mapstructure:"KAFKA_BOOKING_TOPIC"`
	KafkaGroupID      string   `mapstructure:"KAFKA_GROUP_ID"`

	ReconnectInitial    time.Duration `mapstructure:"RECONNECT_INITIAL"`
	ReconnectMax        time.Duration `mapstructure:"RECONNECT_MAX"`
	ReconnectMaxElapsed time.Duration `mapstructure:"RECONNECT_MAX_ELAPSED"`

	DisplayTimezone string `mapstructure:"DISPLAY_TIMEZONE"`

	LoginRateLimit float64 `mapstructure:"LOGIN_RATE_LIMIT"`
	LoginRateBurst int     `mapstructure:"LOGIN_RATE_BURST"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	IdempotencyTTL time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	MaxRequestSize int           `mapstructure:"MAX_REQUEST_SIZE"`

	ReadTimeout     time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `mapstructure:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	Log *logger.Logger `mapstructure:"-"`
}

// Load reads configuration from the environment (and an optional .env file),
// validates it and logs the effective values. Invalid configuration is fatal.
func Load(serviceName string) *Config {
	cfg, err := Read(viper.New())
	if err != nil {
		logger.New(logger.Config{Service: serviceName}).Fatal("Failed to read configuration", "error", err)
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// Read populates a Config from v without validating it.
func Read(v *viper.Viper) (*Config, error) {
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)
	for _, key := range boundKeys {
		_ = v.BindEnv(key)
	}

	// a missing .env is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.KafkaBrokers = splitList(v.GetString(EnvKafkaBrokers))
	return cfg, nil
}

var boundKeys = []string{
	EnvPort, EnvLogLevel, EnvLogFormat,
	EnvAuthAPI, EnvDoctorAPI, EnvGatewayAPI, EnvAppointmentAPI, EnvNotificationURL,
	EnvNotifyTransport, EnvUpstreamTimeout,
	EnvSessionStore, EnvSessionTTL, EnvMongoURI, EnvMongoDatabaseName, EnvMongoConnTimeout,
	EnvRedisAddr, EnvRedisPassword, EnvRedisDB,
	EnvCookieName, EnvCookieSecure, EnvSealKey,
	EnvKafkaBrokers, EnvKafkaBookingTopic, EnvKafkaGroupID,
	EnvReconnectInitial, EnvReconnectMax, EnvReconnectMaxElapsed,
	EnvDisplayTimezone, EnvLoginRateLimit, EnvLoginRateBurst,
	EnvRequestTimeout, EnvIdempotencyTTL, EnvMaxRequestSize,
	EnvReadTimeout, EnvWriteTimeout, EnvIdleTimeout, EnvShutdownTimeout,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(EnvPort, DefaultPort)
	v.SetDefault(EnvLogLevel, DefaultLogLevel)
	v.SetDefault(EnvLogFormat, DefaultLogFormat)

	v.SetDefault(EnvAuthAPI, DefaultAuthAPI)
	v.SetDefault(EnvDoctorAPI, DefaultDoctorAPI)
	v.SetDefault(EnvGatewayAPI, DefaultGatewayAPI)
	v.SetDefault(EnvAppointmentAPI, DefaultAppointmentAPI)
	v.SetDefault(EnvNotificationURL, DefaultNotificationURL)
	v.SetDefault(EnvNotifyTransport, DefaultNotifyTransport)
	v.SetDefault(EnvUpstreamTimeout, DefaultUpstreamTimeout)

	v.SetDefault(EnvSessionStore, DefaultSessionStore)
	v.SetDefault(EnvSessionTTL, DefaultSessionTTL)
	v.SetDefault(EnvMongoURI, DefaultMongoURI)
	v.SetDefault(EnvMongoDatabaseName, DefaultMongoDatabaseName)
	v.SetDefault(EnvMongoConnTimeout, DefaultMongoConnTimeout)
	v.SetDefault(EnvRedisAddr, DefaultRedisAddr)
	v.SetDefault(EnvRedisDB, DefaultRedisDB)

	v.SetDefault(EnvCookieName, DefaultCookieName)
	v.SetDefault(EnvCookieSecure, false)

	v.SetDefault(EnvKafkaBookingTopic, DefaultKafkaBookingTopic)
	v.SetDefault(EnvKafkaGroupID, DefaultKafkaGroupID)

	v.SetDefault(EnvReconnectInitial, DefaultReconnectInitial)
	v.SetDefault(EnvReconnectMax, DefaultReconnectMax)
	v.SetDefault(EnvReconnectMaxElapsed, DefaultReconnectMaxElapsed)

	v.SetDefault(EnvDisplayTimezone, DefaultDisplayTimezone)

	v.SetDefault(EnvLoginRateLimit, DefaultLoginRateLimit)
	v.SetDefault(EnvLoginRateBurst, DefaultLoginRateBurst)

	v.SetDefault(EnvRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(EnvIdempotencyTTL, DefaultIdempotencyTTL)
	v.SetDefault(EnvMaxRequestSize, DefaultMaxRequestSize)

	v.SetDefault(EnvReadTimeout, DefaultReadTimeout)
	v.SetDefault(EnvWriteTimeout, DefaultWriteTimeout)
	v.SetDefault(EnvIdleTimeout, DefaultIdleTimeout)
	v.SetDefault(EnvShutdownTimeout, DefaultShutdownTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	for name, raw := range map[string]string{
		EnvAuthAPI:        cfg.AuthAPI,
		EnvDoctorAPI:      cfg.DoctorAPI,
		EnvGatewayAPI:     cfg.GatewayAPI,
		EnvAppointmentAPI: cfg.AppointmentAPI,
	} {
		if !isHTTPURL(raw) {
			errors = append(errors, fmt.Sprintf("%s must be an http(s) URL, got: %q", name, raw))
		}
	}

	switch cfg.NotifyTransport {
	case TransportSignalR:
		if u, err := url.Parse(cfg.NotificationURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss" && u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("NotificationURL must be a ws(s) or http(s) URL, got: %q", cfg.NotificationURL))
		}
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			errors = append(errors, "KAFKA_BROKERS is required when NOTIFY_TRANSPORT=kafka")
		}
	case TransportNone:
	default:
		errors = append(errors, fmt.Sprintf("NotifyTransport must be one of [signalr, kafka, none], got: %s", cfg.NotifyTransport))
	}

	switch cfg.SessionStore {
	case StoreMemory:
	case StoreMongo:
		if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			errors = append(errors, "RedisAddr cannot be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("SessionStore must be one of [memory, mongo, redis], got: %s", cfg.SessionStore))
	}

	if cfg.SealKey != "" {
		if key, err := base64.StdEncoding.DecodeString(cfg.SealKey); err != nil || (len(key) != 16 && len(key) != 24 && len(key) != 32) {
			errors = append(errors, "SealKey must be a base64 encoded 16, 24 or 32 byte key")
		}
	}

	if cfg.CookieName == "" {
		errors = append(errors, "CookieName cannot be empty")
	}
	if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("DisplayTimezone must be an IANA zone, got: %s", cfg.DisplayTimezone))
	}

	if cfg.UpstreamTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("UpstreamTimeout must be positive, got: %s", cfg.UpstreamTimeout))
	}
	if cfg.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SessionTTL must be positive, got: %s", cfg.SessionTTL))
	}
	if cfg.ReconnectInitial <= 0 || cfg.ReconnectMax < cfg.ReconnectInitial {
		errors = append(errors, fmt.Sprintf("Reconnect backoff must satisfy 0 < initial <= max, got: %s / %s", cfg.ReconnectInitial, cfg.ReconnectMax))
	}
	if cfg.ReconnectMaxElapsed < 0 {
		errors = append(errors, fmt.Sprintf("ReconnectMaxElapsed cannot be negative, got: %s", cfg.ReconnectMaxElapsed))
	}
	if cfg.LoginRateLimit <= 0 {
		errors = append(errors, fmt.Sprintf("LoginRateLimit must be positive, got: %v", cfg.LoginRateLimit))
	}
	if cfg.LoginRateBurst <= 0 {
		errors = append(errors, fmt.Sprintf("LoginRateBurst must be positive, got: %d", cfg.LoginRateBurst))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout < 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout cannot be negative, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"auth_api", cfg.AuthAPI,
		"doctor_api", cfg.DoctorAPI,
		"gateway_api", cfg.GatewayAPI,
		"appointment_api", cfg.AppointmentAPI,
		"notification_url", cfg.NotificationURL,
		"notify_transport", cfg.NotifyTransport,
		"upstream_timeout", cfg.UpstreamTimeout,
		"session_store", cfg.SessionStore,
		"session_ttl", cfg.SessionTTL,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"cookie_name", cfg.CookieName,
		"cookie_secure", cfg.CookieSecure,
		"seal_key_set", cfg.SealKey != "",
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_booking_topic", cfg.KafkaBookingTopic,
		"reconnect_initial", cfg.ReconnectInitial,
		"reconnect_max", cfg.ReconnectMax,
		"reconnect_max_elapsed", cfg.ReconnectMaxElapsed,
		"display_timezone", cfg.DisplayTimezone,
		"login_rate_limit", cfg.LoginRateLimit,
		"login_rate_burst", cfg.LoginRateBurst,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

// Location resolves the display time zone.
func (cfg *Config) Location() *time.Location {
	return locale.Location(cfg.DisplayTimezone)
}

func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

// ConsumerGroupID names the consumer group for one replica. Doctor streams
// live on whichever replica they connected to, so every replica reads the
// whole topic under its own group.
func (cfg *Config) ConsumerGroupID(instance string) string {
	if instance == "" {
		return cfg.KafkaGroupID
	}
	return cfg.KafkaGroupID + "-" + instance
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return sanitizer.NormalizeStringSlice(strings.Split(raw, ","), strings.TrimSpace)
}

func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultDoctorPageSize
	}
	if size > MaxDoctorPageSize {
		return MaxDoctorPageSize
	}
	return size
}

func NormalizePageIndex(index int) int {
	return max(1, index)
}
