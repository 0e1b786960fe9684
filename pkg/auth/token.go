package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autoyard/autoyard-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

var errMissingSubject = errors.New("identity token has no subject")

// ParseIdentityToken validates signature, issuer, expiry and (when configured)
// audience, and requires a subject.
func ParseIdentityToken(cfg config.AuthConfig, tokenString string) (*IdentityClaims, error) {
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.TokenIssuer),
		jwt.WithExpirationRequired(),
	}
	if aud := strings.TrimSpace(cfg.TokenAudience); aud != "" {
		opts = append(opts, jwt.WithAudience(aud))
	}

	claims := &IdentityClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.TokenSecret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errMissingSubject
	}
	return claims, nil
}

// MintIdentityToken signs a token the way the identity provider does. It backs
// local development and tests.
func MintIdentityToken(cfg config.AuthConfig, now time.Time, ttl time.Duration, claims IdentityClaims) (string, error) {
	if cfg.TokenSecret == "" {
		return "", fmt.Errorf("token secret is required")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errMissingSubject
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}

	claims.Issuer = cfg.TokenIssuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if aud := strings.TrimSpace(cfg.TokenAudience); aud != "" {
		claims.Audience = jwt.ClaimStrings{aud}
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}
