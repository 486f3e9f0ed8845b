package main

import (
	"context"
	"os"
	"time"

	"medibook/internal/appointments/events"
	"medibook/internal/appointments/repository"
	"medibook/internal/appointments/service"
	"medibook/internal/appointments/validator"
	doctorsrepo "medibook/internal/doctors/repository"
	"medibook/internal/reminders"
	usersrepo "medibook/internal/users/repository"
	"medibook/pkg/config"
	"medibook/pkg/kafka"
	kafka_config "medibook/pkg/kafka/config"
)

const JobName = "reminders"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	producer, err := kafka.NewProducer(kafkaCfg, cfg.AppointmentsTopic, cfg.AppointmentsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	appointments := service.NewAppointmentService(
		repository.NewMongoAppointmentRepository(cfg),
		repository.NewSlotLockRepository(cfg),
		doctorsrepo.NewMongoDoctorRepository(cfg),
		usersrepo.NewMongoUserRepository(cfg),
		nil,
		validator.NewAppointmentValidator(cfg.Log),
		cfg,
	)

	job := reminders.NewJob(appointments, events.NewPublisher(producer, JobName), cfg.ReminderLeadDays, cfg.Location(), cfg.Log)

	cfg.Log.Info("Starting reminder job", "target_date", job.TargetDate())
	_, runErr := job.Run(ctx)

	if err := producer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka producer", "error", err)
	}
	cfg.GracefulShutdown()

	if runErr != nil {
		cfg.Log.Error("Reminder job failed", "error", runErr)
		os.Exit(1)
	}
}
