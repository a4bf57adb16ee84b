package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/availability"
	"github.com/example/practice-scheduler/internal/config"
	httptransport "github.com/example/practice-scheduler/internal/http"
	"github.com/example/practice-scheduler/internal/notify"
	"github.com/example/practice-scheduler/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Error("failed to resolve timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	var notifier application.Notifier = notify.NopNotifier{}
	smtp := notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	if smtp.Enabled() {
		notifier = notify.NewMailer(smtp, logger)
		logger.Info("mail notifications enabled", "host", smtp.Host, "from", smtp.From)
	} else {
		logger.Info("mail notifications disabled")
	}

	directoryService := application.NewDirectoryServiceWithLogger(
		storage.Professionals,
		storage.Clients,
		storage.Partners,
		idGenerator,
		now,
		logger,
	)
	availabilityService := application.NewAvailabilityServiceWithLogger(
		storage.Templates,
		storage.Exceptions,
		storage.Appointments,
		directoryService,
		availability.NewEngine(location),
		application.AvailabilityServiceConfig{
			MaxRangeDays: cfg.MaxRangeDays,
			CacheTTL:     cfg.SlotCacheTTL,
		},
		idGenerator,
		now,
		logger,
	)
	bookingService := application.NewBookingServiceWithLogger(
		storage.Appointments,
		storage.Participants,
		directoryService,
		notifier,
		availabilityService,
		idGenerator,
		now,
		logger,
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Directory:    httptransport.NewDirectoryHandler(directoryService, logger),
		Availability: httptransport.NewAvailabilityHandler(availabilityService, logger),
		Appointments: httptransport.NewAppointmentHandler(bookingService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("scheduler API listening", "addr", server.Addr, "timezone", cfg.Timezone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
