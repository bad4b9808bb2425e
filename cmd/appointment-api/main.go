// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package main is the appointment service API that computes bookable slots
// across participant calendars and handles booking requests over HTTP and
// NATS.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rtcamp/appointment-service/internal/handlers"
	"github.com/rtcamp/appointment-service/internal/infrastructure/messaging"
	"github.com/rtcamp/appointment-service/internal/logging"
	"github.com/rtcamp/appointment-service/internal/service"
	"github.com/rtcamp/appointment-service/internal/telemetry"
)

const serviceName = "appointment-service"

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Set up JWT validation for the HTTP surface.
	jwtAuth, err := setupJWTAuth()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JWT authentication")
		os.Exit(1)
	}

	// Set up tracing before anything that creates spans.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.ConfigFromEnv(serviceName))
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up tracing")
		os.Exit(1)
	}

	// Initialize email service (independent of NATS)
	emailService, err := setupEmailService(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email service")
		return
	}

	tokenCodec, err := setupTokenCodec(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up reschedule token codec")
		return
	}

	calendarRegistry := setupCalendarRegistry(env)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	authService := service.NewAuthService(jwtAuth)
	busyCollector := service.NewBusyCollector(calendarRegistry, serviceConfig)
	availabilityService := service.NewAvailabilityService(repos.Participant, busyCollector)
	slotService := service.NewSlotService(repos.Group, availabilityService)
	bookingService := service.NewBookingService(
		repos.Group,
		repos.Booking,
		slotService,
		calendarRegistry,
		tokenCodec,
		emailService,
		messageBuilder,
		serviceConfig,
	)

	// Initialize handlers
	appointmentHandler := handlers.NewAppointmentHandler(slotService, bookingService)

	api := NewAppointmentAPI(authService, slotService, bookingService)

	httpServer := setupHTTPServer(flags, api, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubcriptions(ctx, appointmentHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, shutdownTracing, &gracefulCloseWG, cancel)
}

// gracefulShutdown stops the HTTP listener, drains the NATS connection, and
// flushes pending traces before exiting.
func gracefulShutdown(
	httpServer *http.Server,
	natsConn *nats.Conn,
	shutdownTracing func(context.Context) error,
	gracefulCloseWG *sync.WaitGroup,
	cancel context.CancelFunc,
) {
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			gracefulCloseWG.Done()
		}
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error flushing traces")
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
