package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexsandroveiga/paygate/src/config"
	"github.com/alexsandroveiga/paygate/src/dispatch"
	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/alexsandroveiga/paygate/src/health"
	"github.com/alexsandroveiga/paygate/src/leader"
	"github.com/alexsandroveiga/paygate/src/ledger"
	"github.com/alexsandroveiga/paygate/src/processor"
	"github.com/alexsandroveiga/paygate/src/service"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.NewRedisConnection(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer client.Close()

	aggregator := health.NewAggregator(
		health.NewHTTPProber(),
		leader.NewRedisElector(client),
		health.NewRedisRepository(client),
		health.Options{
			DefaultURL:   cfg.DefaultProcessorURL,
			FallbackURL:  cfg.FallbackProcessorURL,
			Interval:     cfg.HealthCheckInterval,
			InstanceName: cfg.InstanceName,
		})
	aggregator.Start(ctx)

	var queue dispatch.Queue
	if cfg.QueueMode == config.QueueModeMemory {
		queue = dispatch.NewMemoryQueue(10000)
	} else {
		queue = dispatch.NewRedisQueue(client)
	}
	log.Infof("instance %s using %s queue", cfg.InstanceName, cfg.QueueMode)

	paymentsClient := processor.New(aggregator, cfg.DefaultProcessorURL, cfg.FallbackProcessorURL, cfg.RetriesBeforeFallback)
	ledgerRepo := ledger.NewRedisLedger(client)
	dispatcher := dispatch.New(queue, paymentsClient, ledgerRepo, cfg.NumWorkers)
	dispatcher.Start(ctx)

	payments := service.NewPayments(dispatcher, ledgerRepo)

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		StrictRouting: true,
	})

	app.Post("/payments", func(c fiber.Ctx) error {
		var req domain.PaymentRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := payments.Accept(req); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	app.Post("/purge-payments", func(c fiber.Ctx) error {
		if err := payments.Purge(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/payments-summary", func(c fiber.Ctx) error {
		from, err := parseBound(c.Query("from"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from datetime"})
		}
		to, err := parseBound(c.Query("to"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to datetime"})
		}
		summary, err := payments.Summary(c.Context(), from, to)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusOK).JSON(summary)
	})

	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	dispatcher.Shutdown(5 * time.Second)
	if err := app.Shutdown(); err != nil {
		log.Errorf("server shutdown failed: %v", err)
	}
}

// parseBound turns an optional RFC3339 query value into a summary bound;
// empty means unconstrained on that side.
func parseBound(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
