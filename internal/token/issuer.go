// Package token issues and verifies the signed, time-bounded credentials
// that prove a user identifier was authenticated. Verification here is
// purely computational; whether a credential is still the live one for its
// user is the session authority's call, not this package's.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when a credential's embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned for credentials that fail parsing or
	// signature verification for any reason other than expiry.
	ErrTokenMalformed = errors.New("token malformed")
)

const minSecretBytes = 32

// Claims is the credential payload: the user identifier plus the
// registered time-bound claims.
type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// Config holds issuer tuning parameters.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Issuer signs and verifies HS256 credentials. It is stateless and safe
// for concurrent use.
type Issuer struct {
	config Config
}

// NewIssuer validates cfg and returns an [Issuer].
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, fmt.Errorf("token secret must be at least %d bytes", minSecretBytes)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	return &Issuer{config: cfg}, nil
}

// Issue signs a credential carrying userID with an embedded expiry.
func (i *Issuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}

	now := time.Now()
	claims := Claims{
		UID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.TTL)),
			Issuer:    i.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.config.Secret)
}

// Verify checks signature and expiry and returns the embedded user ID.
// It never consults storage.
func (i *Issuer) Verify(tokenStr string) (string, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(t *jwt.Token) (interface{}, error) { return i.config.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if !parsed.Valid || claims.UID == "" {
		return "", ErrTokenMalformed
	}

	return claims.UID, nil
}

// TTL exposes the configured credential lifetime so callers can align
// session record expiry with it.
func (i *Issuer) TTL() time.Duration {
	return i.config.TTL
}
