package main

import (
	"context"
	"time"

	authhandler "renthub/internal/auth/handler"
	authservice "renthub/internal/auth/service"
	"renthub/internal/auth/token"
	bookinghandler "renthub/internal/bookings/handler"
	bookingrepo "renthub/internal/bookings/repository"
	"renthub/internal/bookings/scheduler"
	bookingservice "renthub/internal/bookings/service"
	bookingvalidator "renthub/internal/bookings/validator"
	userhandler "renthub/internal/users/handler"
	userrepo "renthub/internal/users/repository"
	userservice "renthub/internal/users/service"
	vehiclehandler "renthub/internal/vehicles/handler"
	vehiclerepo "renthub/internal/vehicles/repository"
	vehicleservice "renthub/internal/vehicles/service"
	vehiclevalidator "renthub/internal/vehicles/validator"
	"renthub/pkg/app"
	"renthub/pkg/config"
	"renthub/pkg/contracts"
	"renthub/pkg/events"
)

const ServiceName = "renthub"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting RentHub service")

	userRepo := userrepo.NewMongoUserRepository(cfg)
	vehicleRepo := vehiclerepo.NewMongoVehicleRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	ensureIndexes(cfg, userRepo, vehicleRepo, bookingRepo)

	publisher := newPublisher(cfg)

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := authservice.NewAuthService(userRepo, tokens, cfg)
	userSvc := userservice.NewUserService(userRepo, cfg)
	vehicleSvc := vehicleservice.NewVehicleService(
		vehicleRepo,
		bookingRepo,
		vehiclevalidator.NewVehicleValidator(cfg.Log),
		cfg,
	)
	bookingSvc := bookingservice.NewBookingService(
		bookingRepo,
		vehicleRepo,
		userRepo,
		publisher,
		cfg,
	)

	sweeper := scheduler.New(bookingSvc, cfg.ReconcileInterval, cfg.RequestTimeout, cfg.Log)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, tokens,
		[]contracts.Handler{
			authhandler.NewAuthHandler(authSvc, cfg.Log),
		},
		[]contracts.AuthenticatedHandler{
			bookinghandler.NewBookingHandler(bookingSvc, bookingvalidator.NewBookingValidator(cfg.Log), cfg.Log),
			vehiclehandler.NewVehicleHandler(vehicleSvc, cfg.Log),
			userhandler.NewUserHandler(userSvc, cfg.Log),
		},
	)
	serverApp.AddWorker(sweeper)
	serverApp.SetPublisher(publisher)
	serverApp.Run()
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(cfg *config.Config, repos ...indexer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			cfg.Log.Fatal("Failed to ensure indexes", "error", err)
		}
	}
	cfg.Log.Info("Database indexes ensured")
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("No Kafka brokers configured, booking events disabled")
		return events.NopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka publisher", "error", err)
	}
	cfg.Log.Info("Kafka publisher initialized", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return publisher
}
