// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package calendar

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtcamp/appointment-service/internal/domain"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	require.NotNil(t, registry)

	provider, err := registry.GetProvider("nonexistent")
	assert.Nil(t, provider)
	assert.Error(t, err)
}

func TestRegistry_RegisterProvider(t *testing.T) {
	registry := NewRegistry()
	mockProvider := &domain.MockCalendarProvider{}

	registry.RegisterProvider("google", mockProvider)

	provider, err := registry.GetProvider("google")
	require.NoError(t, err)
	assert.Equal(t, mockProvider, provider)
}

func TestRegistry_RegisterProvider_Overwrite(t *testing.T) {
	registry := NewRegistry()
	first := &domain.MockCalendarProvider{}
	second := &domain.MockCalendarProvider{}

	registry.RegisterProvider("google", first)
	registry.RegisterProvider("google", second)

	provider, err := registry.GetProvider("google")
	require.NoError(t, err)
	assert.Equal(t, second, provider, "most recently registered provider wins")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			registry.RegisterProvider(fmt.Sprintf("provider-%d", n), &domain.MockCalendarProvider{})
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		provider, err := registry.GetProvider(fmt.Sprintf("provider-%d", i))
		require.NoError(t, err)
		assert.NotNil(t, provider)
	}
}
