// Package audit records structured security events (admin logins, payment
// status changes) to the application log and to a Redis list. Events never
// carry secret material.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// ListEvents is the Redis list key holding serialized audit events.
	ListEvents = "audit:events"
	// MaxEvents caps the list length; older events are trimmed.
	MaxEvents = 10000
)

// Outcome classifies how an audited action ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeDenied  Outcome = "denied" // rejected by the abuse guard
)

// Action identifies the audited operation.
type Action string

const (
	ActionAdminLogin  Action = "admin_login"
	ActionAdminLogout Action = "admin_logout"
	ActionMarkPaid    Action = "registration_mark_paid"
)

// Event is one audit record.
type Event struct {
	ID      string    `json:"id"`
	Action  Action    `json:"action"`
	ActorIP string    `json:"actor_ip"`
	Outcome Outcome   `json:"outcome"`
	Subject string    `json:"subject,omitempty"` // e.g. registration ID
	At      time.Time `json:"at"`
}

// Recorder writes audit events. The Redis client is optional; with a nil
// client events still reach the log.
type Recorder struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(client *redis.Client, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{client: client, logger: logger}
}

// Record emits one audit event. A Redis write failure is logged but never
// fails the audited operation.
func (r *Recorder) Record(ctx context.Context, action Action, actorIP string, outcome Outcome, subject string) {
	ev := Event{
		ID:      uuid.New().String(),
		Action:  action,
		ActorIP: actorIP,
		Outcome: outcome,
		Subject: subject,
		At:      time.Now().UTC(),
	}

	fields := []zap.Field{
		zap.String("action", string(ev.Action)),
		zap.String("actor_ip", ev.ActorIP),
		zap.String("outcome", string(ev.Outcome)),
	}
	if ev.Subject != "" {
		fields = append(fields, zap.String("subject", ev.Subject))
	}
	r.logger.Info("audit", fields...)

	if r.client == nil {
		return
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		r.logger.Warn("audit marshal failed", zap.Error(err))
		return
	}
	pipe := r.client.Pipeline()
	pipe.RPush(ctx, ListEvents, raw)
	pipe.LTrim(ctx, ListEvents, -MaxEvents, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("audit push failed", zap.Error(err))
	}
}
