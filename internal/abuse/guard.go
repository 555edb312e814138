// Package abuse implements the per-IP rate-limiting policy guarding the
// mutation endpoints. It is a heuristic circuit breaker over ephemeral
// counters, not a durable audit trail.
package abuse

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/raid-scout/backend/pkg/apperr"
)

// Config holds the guard thresholds. The windows are rolling approximations:
// a counter opens a window on first increment and resets when it expires,
// which also serves as the cooldown once a threshold is crossed.
type Config struct {
	// RegistrationWindow bounds both registration counters.
	RegistrationWindow time.Duration
	// RegistrationMaxSuccess: submissions are blocked once more than this
	// many successes landed inside the window.
	RegistrationMaxSuccess int64
	// RegistrationMaxFailure: likewise for failed submissions.
	RegistrationMaxFailure int64

	// LoginWindow bounds the login attempt counter.
	LoginWindow time.Duration
	// LoginMaxAttempts is the number of attempts admitted per window; the
	// next one is rejected regardless of password correctness.
	LoginMaxAttempts int64
}

// Guard decides whether a client may proceed with a guarded action.
type Guard struct {
	store  CounterStore
	cfg    Config
	logger *zap.Logger
}

// NewGuard creates an abuse guard over the given counter store.
func NewGuard(store CounterStore, cfg Config, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{store: store, cfg: cfg, logger: logger}
}

func regSuccessKey(ip string) string { return "abuse:reg:ok:" + ip }
func regFailureKey(ip string) string { return "abuse:reg:ko:" + ip }
func loginKey(ip string) string      { return "abuse:login:" + ip }

// AllowRegistration admits or rejects a registration submission for ip.
// Counter-store failures admit the request: the guard degrades open rather
// than taking registrations down with it.
func (g *Guard) AllowRegistration(ctx context.Context, ip string) error {
	ok, err := g.store.Get(ctx, regSuccessKey(ip))
	if err != nil {
		g.logger.Warn("abuse counter read failed", zap.Error(err), zap.String("ip", ip))
		return nil
	}
	if ok > g.cfg.RegistrationMaxSuccess {
		g.logger.Warn("registration blocked", zap.String("ip", ip), zap.Int64("successes", ok))
		return apperr.New(apperr.CodeRateLimit)
	}
	ko, err := g.store.Get(ctx, regFailureKey(ip))
	if err != nil {
		g.logger.Warn("abuse counter read failed", zap.Error(err), zap.String("ip", ip))
		return nil
	}
	if ko > g.cfg.RegistrationMaxFailure {
		g.logger.Warn("registration blocked", zap.String("ip", ip), zap.Int64("failures", ko))
		return apperr.New(apperr.CodeRateLimit)
	}
	return nil
}

// RecordRegistrationSuccess counts a committed submission for ip.
func (g *Guard) RecordRegistrationSuccess(ctx context.Context, ip string) {
	if _, err := g.store.Incr(ctx, regSuccessKey(ip), g.cfg.RegistrationWindow); err != nil {
		g.logger.Warn("abuse counter incr failed", zap.Error(err), zap.String("ip", ip))
	}
}

// RecordRegistrationFailure counts a rejected submission for ip.
func (g *Guard) RecordRegistrationFailure(ctx context.Context, ip string) {
	if _, err := g.store.Incr(ctx, regFailureKey(ip), g.cfg.RegistrationWindow); err != nil {
		g.logger.Warn("abuse counter incr failed", zap.Error(err), zap.String("ip", ip))
	}
}

// AllowLogin admits or rejects a login attempt for ip.
func (g *Guard) AllowLogin(ctx context.Context, ip string) error {
	n, err := g.store.Get(ctx, loginKey(ip))
	if err != nil {
		g.logger.Warn("abuse counter read failed", zap.Error(err), zap.String("ip", ip))
		return nil
	}
	if n >= g.cfg.LoginMaxAttempts {
		g.logger.Warn("login blocked", zap.String("ip", ip), zap.Int64("attempts", n))
		return apperr.New(apperr.CodeRateLimitLogin)
	}
	return nil
}

// RecordLoginAttempt counts a login attempt for ip, successful or not.
func (g *Guard) RecordLoginAttempt(ctx context.Context, ip string) {
	if _, err := g.store.Incr(ctx, loginKey(ip), g.cfg.LoginWindow); err != nil {
		g.logger.Warn("abuse counter incr failed", zap.Error(err), zap.String("ip", ip))
	}
}
