// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/rtcamp/appointment-service/internal/logging"
)

// flags are the command line flags for the appointment service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the appointment service.
type environment struct {
	Port    string
	NatsURL string

	// TokenSigningKey signs reschedule tokens. Required.
	TokenSigningKey string

	GCal gcalConfig
	SMTP smtpConfig
}

// gcalConfig holds Google Calendar API credentials.
type gcalConfig struct {
	ClientID     string
	ClientSecret string
}

// smtpConfig holds outbound email settings. Email is disabled when Host is
// empty.
type smtpConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// parseFlags parses command line flags for the appointment service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the appointment service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	tokenSigningKey := os.Getenv("RESCHEDULE_TOKEN_KEY")
	if tokenSigningKey == "" {
		slog.Error("RESCHEDULE_TOKEN_KEY environment variable is required but not set")
		os.Exit(1)
	}

	return environment{
		Port:            port,
		NatsURL:         natsURL,
		TokenSigningKey: tokenSigningKey,
		GCal:            parseGCalConfig(),
		SMTP:            parseSMTPConfig(),
	}
}

// parseGCalConfig parses Google Calendar credentials from environment variables
func parseGCalConfig() gcalConfig {
	clientID := os.Getenv("GCAL_CLIENT_ID")
	if clientID == "" {
		slog.Error("GCAL_CLIENT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientSecret := os.Getenv("GCAL_CLIENT_SECRET")
	if clientSecret == "" {
		slog.Error("GCAL_CLIENT_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	return gcalConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

// parseSMTPConfig parses outbound email settings from environment variables
func parseSMTPConfig() smtpConfig {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return smtpConfig{}
	}

	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			slog.With(logging.ErrKey, err, "port", raw).Error("invalid SMTP_PORT provided, using default")
		} else {
			port = parsed
		}
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@localhost"
	}

	return smtpConfig{
		Host:     host,
		Port:     port,
		From:     from,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
}
