package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASS"
	EnvRedisDB        = "REDIS_DB"
	EnvDoctorCacheTTL = "DOCTOR_CACHE_TTL"

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

	EnvBusinessHoursStart = "BUSINESS_HOURS_START"
	EnvBusinessHoursEnd   = "BUSINESS_HOURS_END"
	EnvTimeZone           = "CLINIC_TIME_ZONE"
	EnvSlotLockTTL        = "SLOT_LOCK_TTL"

	EnvNotificationTimeout  = "NOTIFICATION_TIMEOUT"
	EnvAppointmentsTopic    = "APPOINTMENTS_TOPIC"
	EnvAppointmentsDLQTopic = "APPOINTMENTS_DLQ_TOPIC"
	EnvNotifierGroupID      = "NOTIFIER_GROUP_ID"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUser     = "SMTP_USER"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPFrom     = "SMTP_FROM"

	EnvReminderLeadDays   = "REMINDER_LEAD_DAYS"
	EnvBookingHorizonDays = "BOOKING_HORIZON_DAYS"
)
