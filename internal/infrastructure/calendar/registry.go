// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package calendar holds the registry of calendar providers.
package calendar

import (
	"fmt"
	"sync"

	"github.com/rtcamp/appointment-service/internal/domain"
)

// Registry implements the CalendarRegistry interface
type Registry struct {
	providers map[string]domain.CalendarProvider
	mu        sync.RWMutex
}

// NewRegistry creates a new calendar registry
func NewRegistry() domain.CalendarRegistry {
	return &Registry{
		providers: make(map[string]domain.CalendarProvider),
	}
}

// GetProvider returns the calendar provider for the specified provider name
func (r *Registry) GetProvider(provider string) (domain.CalendarProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	calendarProvider, exists := r.providers[provider]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.NewNotFoundError("calendar provider not found", nil), provider)
	}

	return calendarProvider, nil
}

// RegisterProvider registers a calendar provider
func (r *Registry) RegisterProvider(provider string, calendarProvider domain.CalendarProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[provider] = calendarProvider
}
