package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	doctorsrepo "medibook/internal/doctors/repository"
	"medibook/internal/notifications"
	usersrepo "medibook/internal/users/repository"
	"medibook/pkg/cache"
	"medibook/pkg/config"
	"medibook/pkg/kafka"
	kafka_config "medibook/pkg/kafka/config"
	kafka_middleware "medibook/pkg/kafka/middleware"
	"medibook/pkg/mailer"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

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

	smtp := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, cfg.Log)

	processor := notifications.NewProcessor(
		usersrepo.NewMongoUserRepository(cfg),
		doctors,
		smtp,
		cfg.NotificationTimeout,
		cfg.Log,
	)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.AppointmentsTopic, cfg.NotifierGroupID, cfg.AppointmentsDLQTopic, processor.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.LogMessages {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", cfg.AppointmentsTopic, "group_id", cfg.NotifierGroupID)
	if err := consumer.Start(ctx); err != nil {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
