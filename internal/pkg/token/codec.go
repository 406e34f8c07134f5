// Package token issues and reads the signed, time-bound bearer tokens used
// for login links, request authorization and session refresh.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-api/internal/core/domain"
)

// Purpose separates the token variants. A token issued for one purpose is
// never accepted as another.
type Purpose string

const (
	PurposeLogin   Purpose = "login"
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

// Claims is the payload carried by every token.
type Claims struct {
	Purpose Purpose `json:"typ"`
	UserID  int64   `json:"uid,omitempty"`
	Email   string  `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs tokens with HS256 using a key derived per purpose from a
// single secret.
type Codec struct {
	keys   map[Purpose][]byte
	issuer string
	now    func() time.Time
	log    zerolog.Logger
}

// Option customises a Codec.
type Option func(*Codec)

// WithIssuer sets the iss claim on issued tokens and requires it on read.
func WithIssuer(issuer string) Option {
	return func(c *Codec) { c.issuer = issuer }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithLogger sets the logger used to record why a token was rejected.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Codec) { c.log = log }
}

func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	c := &Codec{
		keys: make(map[Purpose][]byte, 3),
		now:  time.Now,
		log:  zerolog.Nop(),
	}
	for _, p := range []Purpose{PurposeLogin, PurposeAccess, PurposeRefresh} {
		c.keys[p] = deriveKey(secret, p)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs claims for purpose with an expiry ttl from now.
func (c *Codec) Issue(purpose Purpose, claims Claims, ttl time.Duration) (string, error) {
	key, ok := c.keys[purpose]
	if !ok {
		return "", fmt.Errorf("token: unknown purpose %q", purpose)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token: non-positive ttl %s", ttl)
	}

	now := c.now()
	claims.Purpose = purpose
	claims.Issuer = c.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := t.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Read verifies raw for purpose. Every failure is reported as
// domain.ErrInvalidToken; the underlying reason is only logged.
func (c *Codec) Read(purpose Purpose, raw string) (*Claims, error) {
	key, ok := c.keys[purpose]
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		c.log.Debug().Str("purpose", string(purpose)).Str("reason", reason(err)).Msg("token rejected")
		return nil, domain.ErrInvalidToken
	}
	if claims.Purpose != purpose {
		c.log.Debug().Str("purpose", string(purpose)).Str("got", string(claims.Purpose)).Msg("token purpose mismatch")
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func reason(err error) string {
	switch {
	case err == nil:
		return "invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}

func deriveKey(secret string, purpose Purpose) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}
