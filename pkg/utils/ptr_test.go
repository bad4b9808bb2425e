// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPtr(t *testing.T) {
	s := Ptr("hello")
	require.NotNil(t, s)
	assert.Equal(t, "hello", *s)

	n := Ptr(42)
	require.NotNil(t, n)
	assert.Equal(t, 42, *n)
}

func TestValue(t *testing.T) {
	assert.Equal(t, "hello", Value(Ptr("hello")))
	assert.Equal(t, "", Value[string](nil))

	now := time.Now()
	assert.Equal(t, now, Value(Ptr(now)))
	assert.True(t, Value[time.Time](nil).IsZero())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "a", Coalesce("", "a", "b"))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, 7, Coalesce(0, 0, 7))
}
