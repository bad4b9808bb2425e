// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package service implements the scheduling core: busy-time aggregation,
// availability computation, slot generation, and the booking policy engine.
package service

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// CalendarProvider names the registered calendar provider used for busy
	// lookups and event commits.
	CalendarProvider string
	// BusyFetchWorkers caps concurrent calendar fetches per availability query.
	BusyFetchWorkers int
}

const (
	defaultCalendarProvider = "google"
	defaultBusyFetchWorkers = 4
)

// withDefaults fills in unset config fields.
func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.CalendarProvider == "" {
		c.CalendarProvider = defaultCalendarProvider
	}
	if c.BusyFetchWorkers <= 0 {
		c.BusyFetchWorkers = defaultBusyFetchWorkers
	}
	return c
}
