// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"os"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/infrastructure/auth"
	"github.com/rtcamp/appointment-service/internal/infrastructure/calendar"
	"github.com/rtcamp/appointment-service/internal/infrastructure/email"
	"github.com/rtcamp/appointment-service/internal/infrastructure/gcal"
	gcalapi "github.com/rtcamp/appointment-service/internal/infrastructure/gcal/api"
	"github.com/rtcamp/appointment-service/internal/infrastructure/token"
)

// setupJWTAuth configures JWT authentication for the service
func setupJWTAuth() (*auth.JWTAuth, error) {
	jwtAuthConfig := auth.JWTAuthConfig{
		JWKSURL:            os.Getenv("JWKS_URL"),
		Audience:           os.Getenv("JWT_AUDIENCE"),
		Issuer:             os.Getenv("JWT_ISSUER"),
		MockLocalPrincipal: os.Getenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL"),
	}
	return auth.NewJWTAuth(jwtAuthConfig)
}

// setupEmailService configures booking notification delivery. Without an SMTP
// host the service runs with notifications logged instead of sent.
func setupEmailService(env environment) (domain.EmailService, error) {
	if env.SMTP.Host == "" {
		slog.Info("SMTP_HOST not set, email notifications are disabled")
		return email.NewNoOpService(), nil
	}

	return email.NewSMTPService(email.SMTPConfig{
		Host:     env.SMTP.Host,
		Port:     env.SMTP.Port,
		From:     env.SMTP.From,
		Username: env.SMTP.Username,
		Password: env.SMTP.Password,
	})
}

// setupCalendarRegistry wires the Google Calendar provider into the registry.
func setupCalendarRegistry(env environment) domain.CalendarRegistry {
	client := gcalapi.NewClient(gcalapi.Config{
		ClientID:     env.GCal.ClientID,
		ClientSecret: env.GCal.ClientSecret,
	})

	registry := calendar.NewRegistry()
	registry.RegisterProvider(gcal.ProviderName, gcal.NewProvider(client))
	return registry
}

// setupTokenCodec builds the reschedule token codec from the signing key.
func setupTokenCodec(env environment) (domain.TokenCodec, error) {
	return token.NewCodec([]byte(env.TokenSigningKey))
}
