package main

import (
	"github.com/joho/godotenv"

	"slotbook/internal/availability"
	availabilityhandler "slotbook/internal/availability/handler"
	bookinghandler "slotbook/internal/bookings/handler"
	bookingrepository "slotbook/internal/bookings/repository"
	bookingservice "slotbook/internal/bookings/service"
	bookingvalidator "slotbook/internal/bookings/validator"
	cataloghandler "slotbook/internal/catalog/handler"
	catalogrepository "slotbook/internal/catalog/repository"
	catalogservice "slotbook/internal/catalog/service"
	catalogvalidator "slotbook/internal/catalog/validator"
	"slotbook/internal/locks"
	lockhandler "slotbook/internal/locks/handler"
	"slotbook/internal/workflow"
	"slotbook/pkg/app"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	"slotbook/pkg/contracts"
	"slotbook/pkg/kafka"
)

const ServiceName = "slotbook"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting slotbook service")

	producer := initEventPublisher(cfg)
	if producer != nil {
		defer producer.Close()
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, initHandlers(cfg, producer)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) []contracts.Handler {
	clk := clock.System()

	lockManager := locks.NewManager(initLockStore(cfg), clk, cfg.LockTTL, cfg.Log)

	// A typed nil must not reach the Publisher interface, or the nil
	// check in the ledger would pass and publishing would panic.
	var events bookingservice.Publisher
	if producer != nil {
		events = producer
	}

	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	ledger := bookingservice.NewBookingService(
		bookingRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
		clk,
		events,
	)

	catalog := catalogservice.NewCatalogService(
		catalogrepository.NewMongoServiceRepository(cfg),
		catalogrepository.NewMongoSpecialistRepository(cfg),
		bookingRepo,
		catalogvalidator.NewCatalogValidator(cfg.Log),
		cfg,
	)

	availabilitySvc := availability.NewAvailabilityService(
		availability.NewResolver(clk, cfg.SlotStepMinutes),
		catalog,
		catalog,
		ledger,
		lockManager,
		cfg,
	)

	workflowSvc := workflow.NewWorkflowService(ledger, lockManager, catalog, cfg)

	cfg.Log.Info("Services initialized",
		"database", cfg.MongoDatabaseName,
		"lock_backend", cfg.LockBackend,
	)

	return []contracts.Handler{
		cataloghandler.NewCatalogHandler(catalog, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilitySvc, cfg.Log),
		lockhandler.NewLockHandler(lockManager, cfg.Log),
		bookinghandler.NewBookingHandler(workflowSvc, ledger, cfg.Log),
	}
}

func initLockStore(cfg *config.Config) locks.Store {
	if cfg.LockBackend == config.LockBackendRedis {
		return locks.NewRedisStore(cfg.Client.Redis)
	}
	return locks.NewMemoryStore()
}

func initEventPublisher(cfg *config.Config) *kafka.Producer {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, booking events disabled", "error", err)
		return nil
	}
	return producer
}
