// Package admin implements the admin surface: the session authority guarding
// it, listings with CSV export, and the mark-paid action.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raid-scout/backend/pkg/apperr"
	"github.com/raid-scout/backend/pkg/utils"
)

// Session is the authoritative server-side session record. The cookie only
// carries a signed reference to it; expiry is recomputed here on every check,
// never trusted from the client.
type Session struct {
	ID           string    `json:"id"`
	IssuedAt     time.Time `json:"issued_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionStore persists session records with a TTL.
type SessionStore interface {
	Put(ctx context.Context, s *Session, ttl time.Duration) error
	// Get returns (nil, nil) when the session is unknown or expired away.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Authority owns the admin session state machine: bcrypt login, store-backed
// validation with absolute TTL and sliding inactivity timeout, idempotent
// logout. The password hash is injected once at construction.
type Authority struct {
	store        SessionStore
	passwordHash string
	secret       []byte
	ttl          time.Duration
	idleTimeout  time.Duration
	logger       *zap.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewAuthority creates the session authority.
func NewAuthority(store SessionStore, passwordHash, jwtSecret string, ttl, idleTimeout time.Duration, logger *zap.Logger) *Authority {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authority{
		store:        store,
		passwordHash: passwordHash,
		secret:       []byte(jwtSecret),
		ttl:          ttl,
		idleTimeout:  idleTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// TTL returns the absolute session lifetime, used for the cookie max-age.
func (a *Authority) TTL() time.Duration { return a.ttl }

// Login verifies the password against the stored hash and issues a session.
// Returns UNAUTHORIZED on mismatch; the caller records the attempt with the
// abuse guard either way.
func (a *Authority) Login(ctx context.Context, password string) (string, error) {
	if password == "" || !utils.CheckPassword(password, a.passwordHash) {
		return "", apperr.New(apperr.CodeUnauthorized)
	}

	now := a.now()
	s := &Session{
		ID:           uuid.New().String(),
		IssuedAt:     now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(a.ttl),
	}
	if err := a.store.Put(ctx, s, a.ttl); err != nil {
		return "", apperr.Internal(fmt.Errorf("store session: %w", err))
	}

	claims := sessionClaims{
		SessionID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("sign session token: %w", err))
	}
	return token, nil
}

// Validate checks a presented token: UNAUTHORIZED when empty, FORBIDDEN when
// the token or its session is unknown, past the absolute TTL, or idle past
// the inactivity timeout. A valid check slides the activity timestamp.
func (a *Authority) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperr.New(apperr.CodeUnauthorized)
	}
	id, err := a.parseSessionID(token)
	if err != nil {
		return nil, apperr.New(apperr.CodeForbidden)
	}

	s, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load session: %w", err))
	}
	if s == nil {
		return nil, apperr.New(apperr.CodeForbidden)
	}

	now := a.now()
	if now.After(s.ExpiresAt) || now.After(s.LastActiveAt.Add(a.idleTimeout)) {
		_ = a.store.Delete(ctx, s.ID)
		return nil, apperr.New(apperr.CodeForbidden)
	}

	s.LastActiveAt = now
	if err := a.store.Put(ctx, s, s.ExpiresAt.Sub(now)); err != nil {
		a.logger.Warn("session touch failed", zap.Error(err))
	}
	return s, nil
}

// Logout invalidates the token's session immediately. Idempotent: an unknown
// or malformed token is not an error.
func (a *Authority) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	id, err := a.parseSessionID(token)
	if err != nil {
		return nil
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return apperr.Internal(fmt.Errorf("delete session: %w", err))
	}
	return nil
}

func (a *Authority) parseSessionID(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SessionID, nil
}
