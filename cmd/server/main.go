package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mesaYaBooking/internal/config"
	"mesaYaBooking/internal/modules/booking/application/handler"
	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/application/usecase"
	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/modules/booking/infrastructure"
	transport "mesaYaBooking/internal/modules/booking/interface"
	"mesaYaBooking/internal/platform/broker"
	"mesaYaBooking/internal/shared/clock"
	"mesaYaBooking/internal/shared/logging"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "flag error: %v\n", err)
		os.Exit(2)
	}

	// Attempt to load variables from the env file so local runs honour configuration tweaks.
	if err := godotenv.Overload(opts.envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	opts.applyOverrides()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := logging.OpenDaily(cfg.Logging.Directory, time.Now(), logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("backend configured", slog.String("baseUrl", cfg.Backend.BaseURL), slog.Duration("timeout", cfg.Backend.Timeout))
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("prefix", cfg.Kafka.TopicPrefix), slog.String("group", cfg.Kafka.ConsumerGroupID()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infrastructure.NewMetrics(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bookingAPI := infrastructure.NewBookingHTTPClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, nil, metrics)
	hub := infrastructure.NewAvailabilityHub(metrics)
	poller := infrastructure.NewAvailabilityPoller(hub, bookingAPI, cfg.Availability.PollInterval, clock.Real())
	go poller.Run(ctx)

	var publisher port.EventPublisher
	if cfg.KafkaEnabled() {
		kafkaPublisher := broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, metrics.EventsPublished)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		// Registrar handlers de tópicos que cambian la disponibilidad
		handlers := infrastructure.NewHandlerRegistry()
		for _, topic := range handler.SyncTopics() {
			handlers.Register(handler.NewAvailabilitySyncHandler(topic, poller))
		}
		broker.StartKafkaConsumers(ctx, handlers, cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroupID(), cfg.Kafka.TopicPrefix)
	}

	deps := usecase.Dependencies{
		Backend:   bookingAPI,
		Publisher: publisher,
		Notifier:  poller,
		Clock:     clock.Real(),
	}
	sessions := transport.NewSessionStore(cfg.Session.TTL, clock.Real(), func() *usecase.Shell {
		return usecase.NewShell(deps)
	}, metrics.ActiveSessions)
	go sessions.RunJanitor(ctx, time.Minute)
	poller.OnSlots(func(restaurantID string, slots []domain.Slot) {
		sessions.ApplySlots(restaurantID, slots)
	})

	renderer, err := transport.NewRenderer()
	if err != nil {
		slog.Error("template setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Renderer = renderer
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(transport.MetricsMiddleware(metrics))
	transport.NewHandler(sessions, hub).Register(e)
	transport.RegisterOps(e, registry)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	// Esperar señales
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down", slog.Int("sessions", sessions.Len()))
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", slog.Any("error", err))
	}
}
