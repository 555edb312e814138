package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Race is an event category with its own pricing and participant bounds.
// Races are reference data: created by an administrative process, read-only
// from the registration engine's perspective.
type Race struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	ParticipationPrice decimal.Decimal `json:"participationPrice"`
	MinParticipants    int             `json:"minParticipants"`
	MaxParticipants    int             `json:"maxParticipants"`
	RaceDate           time.Time       `json:"raceDate"`
	Description        *string         `json:"description,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// PriceFor returns the exact total price for n participants.
func (r *Race) PriceFor(n int) decimal.Decimal {
	return r.ParticipationPrice.Mul(decimal.NewFromInt(int64(n)))
}
