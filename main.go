package main

import (
	"log"

	"github.com/NelsonCereno/Tingeso-2/config"
	"github.com/NelsonCereno/Tingeso-2/internal/cache"
	"github.com/NelsonCereno/Tingeso-2/internal/clients"
	"github.com/NelsonCereno/Tingeso-2/internal/consumer"
	"github.com/NelsonCereno/Tingeso-2/internal/fleet"
	"github.com/NelsonCereno/Tingeso-2/internal/handler"
	"github.com/NelsonCereno/Tingeso-2/internal/middleware"
	"github.com/NelsonCereno/Tingeso-2/internal/notifier"
	"github.com/NelsonCereno/Tingeso-2/internal/pricing"
	"github.com/NelsonCereno/Tingeso-2/internal/repository"
	"github.com/NelsonCereno/Tingeso-2/internal/schedule"
	"github.com/NelsonCereno/Tingeso-2/internal/service"
	"github.com/NelsonCereno/Tingeso-2/pkg/database"
	"github.com/NelsonCereno/Tingeso-2/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ is optional: without a broker the service still books, it just
	// leaves notifications unsent.
	var eventPublisher notifier.EventPublisher
	if pub, err := rabbitmq.NewPublisher(cfg.RabbitURL); err != nil {
		log.Printf("RabbitMQ unavailable, notifications disabled: %v", err)
	} else {
		eventPublisher = pub
		defer pub.Close()

		// Fare tier sync rides the same broker connection settings.
		if mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL); err != nil {
			log.Printf("RabbitMQ consumer unavailable, fare tier sync disabled: %v", err)
		} else {
			defer mqConsumer.Close()
			if msgs, err := mqConsumer.Consume(); err != nil {
				log.Printf("RabbitMQ consume failed, fare tier sync disabled: %v", err)
			} else {
				consumer.NewTariffConsumer(db).Start(msgs)
			}
		}
	}

	// Redis is optional too: without it the schedule grid is rebuilt per request.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	gridCache := cache.NewGridCache(rdb, cfg.GridCacheTTL)

	// Repositories
	reservationRepo := repository.NewReservationRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	tariffRepo := repository.NewTariffRepository(db)

	// Collaborators: remote fare service when configured, local table otherwise.
	var fareTable pricing.FareTable
	if cfg.FareServiceURL != "" {
		fareTable = clients.NewFareClient(cfg.FareServiceURL, cfg.HTTPTimeout)
	} else {
		fareTable = pricing.NewLocalFareTable(tariffRepo)
	}
	directory := clients.NewDirectoryClient(cfg.ClientServiceURL, cfg.HTTPTimeout)

	// Domain services
	coordinator := pricing.NewCoordinator(fareTable, directory)
	allocator := fleet.NewAllocator(vehicleRepo, reservationRepo, cfg.MaintenanceInterval)
	reservationSvc := service.NewReservationService(reservationRepo, allocator, coordinator, directory, notifier.NewNotifier(eventPublisher))

	blocks, err := schedule.ParseBlocks(cfg.TimeBlocks)
	if err != nil {
		log.Fatalf("invalid TIME_BLOCKS: %v", err)
	}
	gridBuilder := schedule.NewGridBuilder(reservationRepo, blocks, cfg.BlockCapacity)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewRequestValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "reservation-service"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewReservationHandler(reservationSvc).RegisterRoutes(e)
	handler.NewScheduleHandler(gridBuilder, gridCache).RegisterRoutes(e)
	handler.NewVehicleHandler(vehicleRepo).RegisterRoutes(e)
	handler.NewTariffHandler(tariffRepo).RegisterRoutes(e)

	log.Printf("Reservation Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
