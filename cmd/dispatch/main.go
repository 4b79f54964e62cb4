package main

import (
	"hearth/internal/dispatch/events"
	"hearth/internal/dispatch/handler"
	"hearth/internal/dispatch/repository"
	"hearth/internal/dispatch/service"
	"hearth/internal/dispatch/validator"
	"hearth/pkg/app"
	"hearth/pkg/config"
)

const ServiceName = "dispatch"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Dispatch service")

	serverApp := app.NewApplication()
	bookingHandler, providerHandler := initServices(cfg, serverApp)
	serverApp.SetApp(cfg, bookingHandler, providerHandler)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) (*handler.BookingHandler, *handler.ProviderHandler) {
	dispatchValidator := validator.NewDispatchValidator(cfg.Log)

	bookingRepo := repository.NewMongoBookingRepository(cfg)
	providerRepo := repository.NewMongoProviderRepository(cfg)
	lockRepo := repository.NewDispatchLockRepository(cfg)
	requestRepo := repository.NewMongoResidentRequestRepository(cfg)

	publisher := initPublisher(cfg, serverApp)

	syncService := service.NewSyncService(requestRepo, cfg)
	dispatchService := service.NewDispatchService(
		bookingRepo,
		providerRepo,
		lockRepo,
		syncService,
		publisher,
		cfg,
	)
	negotiationService := service.NewNegotiationService(
		bookingRepo,
		providerRepo,
		lockRepo,
		syncService,
		publisher,
		cfg,
	)
	providerService := service.NewProviderService(providerRepo, cfg)

	cfg.Log.Info("Dispatch services initialized", "database", cfg.MongoDatabaseName)

	bookingHandler := handler.NewBookingHandler(dispatchService, negotiationService, dispatchValidator, cfg.Log)
	providerHandler := handler.NewProviderHandler(providerService, cfg.Log)
	return bookingHandler, providerHandler
}

func initPublisher(cfg *config.Config, serverApp *app.Application) service.EventPublisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka publishing disabled, dispatch events will be dropped")
		return events.NopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(cfg.DispatchEventTopic, cfg.DispatchDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}
	serverApp.SetPublisher(publisher)

	cfg.Log.Info("Kafka publisher initialized",
		"topic", cfg.DispatchEventTopic,
		"dlq_topic", cfg.DispatchDLQTopic,
	)
	return publisher
}
