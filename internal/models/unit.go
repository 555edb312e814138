package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is a scout group registering for races. A unit is identified by its
// name and owns exactly one leader.
type Unit struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"unitName"`
	Region    *string   `json:"region,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Leader is the single responsible contact of a unit. Created together with
// its unit on the unit's first registration, never orphaned.
type Leader struct {
	ID        uuid.UUID `json:"id"`
	UnitID    uuid.UUID `json:"unitId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Matches reports whether the stored leader has the same identifying fields
// as the submitted one. Unit identity and its leader are stable once
// established; any divergence is a conflict, not an update.
func (l *Leader) Matches(firstName, lastName, email, phone string) bool {
	return l.FirstName == firstName &&
		l.LastName == lastName &&
		l.Email == email &&
		l.Phone == phone
}
