package main

import (
	"medibook/internal/availability"
	"medibook/internal/doctors/handler"
	"medibook/internal/doctors/repository"
	"medibook/internal/doctors/service"
	"medibook/internal/doctors/validator"
	usersrepo "medibook/internal/users/repository"
	"medibook/pkg/app"
	"medibook/pkg/cache"
	"medibook/pkg/config"
)

const ServiceName = "doctors"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Doctors service")
	doctorService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewDoctorHandler(doctorService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.DoctorService {
	window, err := availability.NewWindow(cfg.BusinessHoursStart, cfg.BusinessHoursEnd)
	if err != nil {
		cfg.Log.Fatal("Invalid business hours", "error", err)
	}

	var doctorCache cache.Cache
	if cfg.Client.Redis != nil {
		doctorCache = cache.NewRedisCache(cfg.Client.Redis, "medibook:")
	}
	doctorRepo := repository.NewCachedDoctorRepository(
		repository.NewMongoDoctorRepository(cfg),
		doctorCache,
		cfg.DoctorCacheTTL,
		cfg.Log,
	)

	doctorService := service.NewDoctorService(
		doctorRepo,
		usersrepo.NewMongoUserRepository(cfg),
		validator.NewDoctorValidator(window, cfg.Log),
		window,
		cfg,
	)

	cfg.Log.Info("Doctor service initialized", "database", cfg.MongoDatabaseName, "business_hours", window.String())
	return doctorService
}
