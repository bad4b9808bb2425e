// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlackoutCalendar(t *testing.T) {
	t.Run("no rules", func(t *testing.T) {
		cal, err := NewBlackoutCalendar(nil)
		require.NoError(t, err)
		assert.True(t, cal.IsValidDate(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("invalid rule fails construction", func(t *testing.T) {
		_, err := NewBlackoutCalendar([]string{"FREQ=SOMETIMES"})
		require.Error(t, err)
	})
}

func TestIsValidDate_WeekendBlackout(t *testing.T) {
	cal, err := NewBlackoutCalendar([]string{"FREQ=WEEKLY;BYDAY=SA,SU"})
	require.NoError(t, err)

	saturday := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	assert.False(t, cal.IsValidDate(saturday))
	assert.False(t, cal.IsValidDate(sunday))
	assert.True(t, cal.IsValidDate(monday))
}

func TestIsValidDate_MultipleRules(t *testing.T) {
	cal, err := NewBlackoutCalendar([]string{
		"FREQ=WEEKLY;BYDAY=SA,SU",
		"FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25",
	})
	require.NoError(t, err)

	assert.False(t, cal.IsValidDate(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.True(t, cal.IsValidDate(time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)))
}

func TestNextValidDate(t *testing.T) {
	cal, err := NewBlackoutCalendar([]string{"FREQ=WEEKLY;BYDAY=SA,SU"})
	require.NoError(t, err)

	t.Run("valid date is returned as-is", func(t *testing.T) {
		monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
		got, ok := cal.NextValidDate(monday, 14)
		require.True(t, ok)
		assert.Equal(t, monday, got)
	})

	t.Run("skips to the next bookable date", func(t *testing.T) {
		saturday := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
		got, ok := cal.NextValidDate(saturday, 14)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("fully blacked-out horizon", func(t *testing.T) {
		blocked, err := NewBlackoutCalendar([]string{"FREQ=DAILY"})
		require.NoError(t, err)

		_, ok := blocked.NextValidDate(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), 14)
		assert.False(t, ok)
	})
}
