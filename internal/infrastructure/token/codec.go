// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package token implements the opaque reschedule token codec. Tokens carry a
// signed booking reference so a reschedule request can be validated without a
// session.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/akamensky/base58"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rtcamp/appointment-service/internal/domain"
)

// macSize is the length of the HMAC-SHA256 trailer on every token.
const macSize = sha256.Size

// Codec encodes reschedule claims into tamper-evident base58 tokens.
type Codec struct {
	key []byte
}

// Ensure Codec implements TokenCodec
var _ domain.TokenCodec = (*Codec)(nil)

// NewCodec creates a codec with the given signing key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("token signing key must not be empty")
	}
	return &Codec{key: key}, nil
}

// tokenPayload is the msgpack wire form of a claim.
type tokenPayload struct {
	BookingUID string `msgpack:"b"`
	IssuedAt   int64  `msgpack:"i"`
}

// Encode serializes and signs a claim into an opaque token.
func (c *Codec) Encode(claim domain.RescheduleClaim) (string, error) {
	if claim.BookingUID == "" {
		return "", domain.NewValidationError("reschedule claim requires a booking UID")
	}

	payload, err := msgpack.Marshal(tokenPayload{
		BookingUID: claim.BookingUID,
		IssuedAt:   claim.IssuedAt.Unix(),
	})
	if err != nil {
		return "", domain.NewInternalError("failed to serialize reschedule claim", err)
	}

	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)

	return base58.Encode(append(payload, mac.Sum(nil)...)), nil
}

// Decode verifies a token's signature and returns the claim inside it.
// Any token not produced by Encode with the same key fails verification.
func (c *Codec) Decode(token string) (domain.RescheduleClaim, error) {
	raw, err := base58.Decode(token)
	if err != nil {
		return domain.RescheduleClaim{}, domain.NewValidationError("malformed reschedule token", err)
	}
	if len(raw) <= macSize {
		return domain.RescheduleClaim{}, domain.NewValidationError("malformed reschedule token")
	}

	payload, gotMAC := raw[:len(raw)-macSize], raw[len(raw)-macSize:]

	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)
	if !hmac.Equal(gotMAC, mac.Sum(nil)) {
		return domain.RescheduleClaim{}, domain.NewValidationError("reschedule token signature mismatch")
	}

	var decoded tokenPayload
	if err := msgpack.Unmarshal(payload, &decoded); err != nil {
		return domain.RescheduleClaim{}, domain.NewValidationError("malformed reschedule token", err)
	}

	return domain.RescheduleClaim{
		BookingUID: decoded.BookingUID,
		IssuedAt:   time.Unix(decoded.IssuedAt, 0).UTC(),
	}, nil
}
