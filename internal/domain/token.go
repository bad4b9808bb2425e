// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package domain

import "time"

// RescheduleClaim is the payload carried inside a reschedule token.
type RescheduleClaim struct {
	BookingUID string
	IssuedAt   time.Time
}

// TokenCodec encodes and decodes opaque reschedule tokens. Tokens are
// tamper-evident: Decode fails on any token not produced by Encode with the
// same key.
type TokenCodec interface {
	Encode(claim RescheduleClaim) (string, error)
	Decode(token string) (RescheduleClaim, error)
}
