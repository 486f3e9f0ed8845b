package config

import (
	"fmt"
	"medibook/pkg/client"
	"medibook/pkg/logger"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	clockRegex      = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DoctorCacheTTL time.Duration

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

	BusinessHoursStart string
	BusinessHoursEnd   string
	TimeZone           string
	SlotLockTTL        time.Duration

	NotificationTimeout  time.Duration
	AppointmentsTopic    string
	AppointmentsDLQTopic string
	NotifierGroupID      string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	ReminderLeadDays   int
	BookingHorizonDays int

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:      getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword:  getEnvStr(EnvRedisPassword, ""),
		RedisDB:        getEnvNum(EnvRedisDB, DefaultRedisDB),
		DoctorCacheTTL: getEnvDuration(EnvDoctorCacheTTL, DefaultDoctorCacheTTL),

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

		BusinessHoursStart: getEnvStr(EnvBusinessHoursStart, DefaultBusinessHoursStart),
		BusinessHoursEnd:   getEnvStr(EnvBusinessHoursEnd, DefaultBusinessHoursEnd),
		TimeZone:           getEnvStr(EnvTimeZone, DefaultTimeZone),
		SlotLockTTL:        getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),

		NotificationTimeout:  getEnvDuration(EnvNotificationTimeout, DefaultNotificationTimeout),
		AppointmentsTopic:    getEnvStr(EnvAppointmentsTopic, DefaultAppointmentsTopic),
		AppointmentsDLQTopic: getEnvStr(EnvAppointmentsDLQTopic, DefaultAppointmentsDLQTopic),
		NotifierGroupID:      getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		SMTPHost:     getEnvStr(EnvSMTPHost, DefaultSMTPHost),
		SMTPPort:     getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPUser:     getEnvStr(EnvSMTPUser, ""),
		SMTPPassword: getEnvStr(EnvSMTPPassword, ""),
		SMTPFrom:     getEnvStr(EnvSMTPFrom, DefaultSMTPFrom),

		ReminderLeadDays:   getEnvNum(EnvReminderLeadDays, DefaultReminderLeadDays),
		BookingHorizonDays: getEnvNum(EnvBookingHorizonDays, DefaultBookingHorizonDays),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
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

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

// Location returns the clinic time zone. Validate guarantees it parses.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty")
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}
	if cfg.DoctorCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("DoctorCacheTTL must be positive, got: %s", cfg.DoctorCacheTTL))
	}

	for name, d := range map[string]time.Duration{
		"RateLimitWindow":     cfg.RateLimitWindow,
		"RequestTimeout":      cfg.RequestTimeout,
		"IdempotencyTTL":      cfg.IdempotencyTTL,
		"ReadTimeout":         cfg.ReadTimeout,
		"WriteTimeout":        cfg.WriteTimeout,
		"IdleTimeout":         cfg.IdleTimeout,
		"ShutdownTimeout":     cfg.ShutdownTimeout,
		"SlotLockTTL":         cfg.SlotLockTTL,
		"NotificationTimeout": cfg.NotificationTimeout,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	startOK := clockRegex.MatchString(cfg.BusinessHoursStart)
	endOK := clockRegex.MatchString(cfg.BusinessHoursEnd)
	if !startOK {
		errors = append(errors, fmt.Sprintf("BusinessHoursStart must be in HH:MM format (00:00-23:59), got: %s", cfg.BusinessHoursStart))
	}
	if !endOK {
		errors = append(errors, fmt.Sprintf("BusinessHoursEnd must be in HH:MM format (00:00-23:59), got: %s", cfg.BusinessHoursEnd))
	}
	// zero-padded HH:MM compares correctly as a string
	if startOK && endOK && cfg.BusinessHoursStart >= cfg.BusinessHoursEnd {
		errors = append(errors, fmt.Sprintf("BusinessHoursStart (%s) must be before BusinessHoursEnd (%s)", cfg.BusinessHoursStart, cfg.BusinessHoursEnd))
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be a valid IANA zone, got: %s", cfg.TimeZone))
	}

	if strings.TrimSpace(cfg.AppointmentsTopic) == "" {
		errors = append(errors, "AppointmentsTopic cannot be empty")
	}
	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		errors = append(errors, fmt.Sprintf("SMTPPort must be between 1 and 65535, got: %d", cfg.SMTPPort))
	}
	if cfg.ReminderLeadDays < 0 {
		errors = append(errors, fmt.Sprintf("ReminderLeadDays cannot be negative, got: %d", cfg.ReminderLeadDays))
	}
	if cfg.BookingHorizonDays <= 0 {
		errors = append(errors, fmt.Sprintf("BookingHorizonDays must be positive, got: %d", cfg.BookingHorizonDays))
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
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_db", cfg.RedisDB,
		"redis_password_set", cfg.RedisPassword != "",
		"doctor_cache_ttl", cfg.DoctorCacheTTL,
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
		"business_hours_start", cfg.BusinessHoursStart,
		"business_hours_end", cfg.BusinessHoursEnd,
		"time_zone", cfg.TimeZone,
		"slot_lock_ttl", cfg.SlotLockTTL,
		"notification_timeout", cfg.NotificationTimeout,
		"appointments_topic", cfg.AppointmentsTopic,
		"appointments_dlq_topic", cfg.AppointmentsDLQTopic,
		"smtp_host", cfg.SMTPHost,
		"smtp_port", cfg.SMTPPort,
		"smtp_user_set", cfg.SMTPUser != "",
		"reminder_lead_days", cfg.ReminderLeadDays,
		"booking_horizon_days", cfg.BookingHorizonDays,
	)
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return min(limit, DefaultPaginationLimit)
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
