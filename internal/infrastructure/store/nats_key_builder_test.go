// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilder_EntityKey(t *testing.T) {
	kb := NewKeyBuilder("")
	assert.Equal(t, "booking/uid-123", kb.EntityKey(KeyPrefixBooking, "uid-123"))

	prefixed := NewKeyBuilder("tenant-a")
	assert.Equal(t, "tenant-a/booking/uid-123", prefixed.EntityKey(KeyPrefixBooking, "uid-123"))
}

func TestKeyBuilder_IndexKey(t *testing.T) {
	kb := NewKeyBuilder("")
	assert.Equal(t, "index/reference/ref-1/uid-123",
		kb.IndexKey(KeyPrefixIndexReference, "ref-1", "uid-123"))
}

func TestKeyBuilder_EncodeDecodeRoundTrip(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []struct {
		name string
		key  string
	}{
		{name: "entity key", key: "booking/uid-123"},
		{name: "index key", key: "index/group/group-1/uid-123"},
		{name: "key with special characters", key: "index/reference/Order ORD-001/uid-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := kb.EncodeKey(tt.key)
			require.NoError(t, err)
			assert.NotContains(t, encoded, "/")

			decoded, err := kb.DecodeKey(encoded)
			require.NoError(t, err)
			assert.Equal(t, "/"+tt.key, decoded)
		})
	}
}

func TestKeyBuilder_EncodeKeyPreservesWildcards(t *testing.T) {
	kb := NewKeyBuilder("")

	encoded, err := kb.EncodeKey("booking/*")
	require.NoError(t, err)
	assert.Contains(t, encoded, "*")
}

func TestKeyBuilder_DecodeKeyInvalid(t *testing.T) {
	kb := NewKeyBuilder("")
	_, err := kb.DecodeKey("not%valid%base64")
	assert.Error(t, err)
}
