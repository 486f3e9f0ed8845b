package main

import (
	"errors"

	"medibook/internal/appointments/events"
	"medibook/internal/appointments/handler"
	"medibook/internal/appointments/repository"
	"medibook/internal/appointments/service"
	"medibook/internal/appointments/validator"
	doctorsrepo "medibook/internal/doctors/repository"
	usersrepo "medibook/internal/users/repository"
	"medibook/pkg/app"
	"medibook/pkg/cache"
	"medibook/pkg/config"
	"medibook/pkg/kafka"
	kafka_config "medibook/pkg/kafka/config"
	kafka_middleware "medibook/pkg/kafka/middleware"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Appointments service")
	serverApp := app.NewApplication(cfg)

	producer := initProducer(cfg)
	if producer != nil {
		serverApp.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
	}

	appointmentService := initServices(cfg, producer)
	serverApp.SetApp(handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.Run()
}

// initProducer returns nil when Kafka is not configured; bookings then go
// through without notifications.
func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if errors.Is(err, kafka_config.ErrNotConfigured) {
		cfg.Log.Warn("Kafka disabled, appointment notifications will not be sent")
		return nil
	}
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.AppointmentsTopic, cfg.AppointmentsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka disabled, appointment notifications will not be sent", "error", err)
		return nil
	}
	if kafkaCfg.LogMessages {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.AppointmentService {
	var notifier service.Notifier
	if producer != nil {
		notifier = events.NewPublisher(producer, ServiceName)
	}

	var doctorCache cache.Cache
	if cfg.Client.Redis != nil {
		doctorCache = cache.NewRedisCache(cfg.Client.Redis, "medibook:")
	}
	doctors := doctorsrepo.NewCachedDoctorRepository(
		doctorsrepo.NewMongoDoctorRepository(cfg),
		doctorCache,
		cfg.DoctorCacheTTL,
		cfg.Log,
	)

	appointmentService := service.NewAppointmentService(
		repository.NewMongoAppointmentRepository(cfg),
		repository.NewSlotLockRepository(cfg),
		doctors,
		usersrepo.NewMongoUserRepository(cfg),
		notifier,
		validator.NewAppointmentValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService
}
