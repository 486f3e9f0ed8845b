package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "medibook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisDB        = 0
	DefaultDoctorCacheTTL = 5 * time.Minute

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBusinessHoursStart = "06:00"
	DefaultBusinessHoursEnd   = "22:00"
	DefaultTimeZone           = "UTC"
	DefaultSlotLockTTL        = 10 * time.Second

	DefaultNotificationTimeout  = 5 * time.Second
	DefaultAppointmentsTopic    = "appointments.events"
	DefaultAppointmentsDLQTopic = "appointments.events.dlq"
	DefaultNotifierGroupID      = "appointment-notifier"

	DefaultSMTPHost = "localhost"
	DefaultSMTPPort = 587
	DefaultSMTPFrom = "no-reply@medibook.local"

	DefaultReminderLeadDays   = 1
	DefaultBookingHorizonDays = 90

	DefaultPageSize        = 10
	DefaultPaginationLimit = 100
)
