package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the manually toggled payment flag of a registration.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Registration is the canonical record linking a unit to a race. Totals are
// derived at creation and immutable; only PaymentStatus transitions, once,
// PENDING to PAID.
//
// Invariants: TotalParticipants == sum of team participant counts, and
// TotalPrice == race.ParticipationPrice * TotalParticipants.
type Registration struct {
	ID                uuid.UUID       `json:"id"`
	UnitID            uuid.UUID       `json:"unitId"`
	RaceID            uuid.UUID       `json:"raceId"`
	TotalParticipants int             `json:"totalParticipants"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Team is a named sub-group of participants within a registration. Teams are
// created atomically with their registration and never modified afterwards.
type Team struct {
	ID               uuid.UUID `json:"id"`
	RegistrationID   uuid.UUID `json:"registrationId"`
	Name             string    `json:"teamName"`
	ParticipantCount int       `json:"participantCount"`
	CreatedAt        time.Time `json:"createdAt"`
}
