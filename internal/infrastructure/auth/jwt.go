// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package auth validates bearer tokens issued by the API gateway and
// extracts the authenticated principal.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

const (
	defaultJWKSURL  = "http://localhost:4457/.well-known/jwks"
	defaultAudience = "appointment-service"
	defaultIssuer   = "http://localhost:4457/"
)

// PrincipalClaims are the custom claims the gateway embeds in access tokens.
type PrincipalClaims struct {
	Principal string `json:"principal"`
	Email     string `json:"email,omitempty"`
}

// Validate checks that the claims carry an authenticated principal.
func (c *PrincipalClaims) Validate(_ context.Context) error {
	if c.Principal == "" {
		return errors.New("principal must be provided")
	}
	return nil
}

// JWTAuthConfig configures token validation.
type JWTAuthConfig struct {
	// JWKSURL is the endpoint serving the gateway's signing keys.
	JWKSURL string
	// Audience is the expected "aud" claim.
	Audience string
	// Issuer is the expected "iss" claim.
	Issuer string
	// MockLocalPrincipal bypasses validation and returns this principal
	// for every request. Local development only.
	MockLocalPrincipal string
}

// IJWTAuth abstracts token validation for the services that consume it.
type IJWTAuth interface {
	ParsePrincipal(ctx context.Context, token string, logger *slog.Logger) (string, error)
}

// JWTAuth validates bearer tokens against the gateway's JWKS.
type JWTAuth struct {
	config    JWTAuthConfig
	validator *validator.Validator
}

// NewJWTAuth creates a JWT authenticator with a caching JWKS provider.
func NewJWTAuth(config JWTAuthConfig) (*JWTAuth, error) {
	if config.JWKSURL == "" {
		config.JWKSURL = defaultJWKSURL
	}
	if config.Audience == "" {
		config.Audience = defaultAudience
	}
	if config.Issuer == "" {
		config.Issuer = defaultIssuer
	}

	jwksURL, err := url.Parse(config.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWKS URL %q: %w", config.JWKSURL, err)
	}

	provider := jwks.NewCachingProvider(jwksURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.PS256,
		config.Issuer,
		[]string{config.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &PrincipalClaims{}
		}),
		validator.WithAllowedClockSkew(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up JWT validator: %w", err)
	}

	return &JWTAuth{
		config:    config,
		validator: jwtValidator,
	}, nil
}

// ParsePrincipal validates the token and returns the principal it carries.
func (a *JWTAuth) ParsePrincipal(ctx context.Context, token string, logger *slog.Logger) (string, error) {
	if a.config.MockLocalPrincipal != "" {
		logger.WarnContext(ctx, "bypassing token validation with mock principal",
			slog.String("principal", a.config.MockLocalPrincipal),
		)
		return a.config.MockLocalPrincipal, nil
	}

	if a.validator == nil {
		return "", errors.New("JWT validator is not set up")
	}

	parsed, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := parsed.(*validator.ValidatedClaims)
	if !ok {
		return "", errors.New("unexpected claims type from validator")
	}

	custom, ok := claims.CustomClaims.(*PrincipalClaims)
	if !ok {
		return "", errors.New("token is missing principal claims")
	}

	return custom.Principal, nil
}
