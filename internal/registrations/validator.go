package registrations

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/raid-scout/backend/internal/models"
	"github.com/raid-scout/backend/pkg/apperr"
)

// DefaultMaxTeams bounds the number of teams in a single submission.
const DefaultMaxTeams = 10

// SubmitRequest is the body for POST /api/registration.
type SubmitRequest struct {
	RaceID string      `json:"raceId" binding:"required"`
	Unit   UnitInput   `json:"unit" binding:"required"`
	Leader LeaderInput `json:"leader" binding:"required"`
	Teams  []TeamInput `json:"teams"`
}

// UnitInput identifies the registering unit.
type UnitInput struct {
	UnitName string `json:"unitName" binding:"required"`
	Region   string `json:"region"`
}

// LeaderInput is the unit's responsible contact.
type LeaderInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
}

// TeamInput is one submitted team.
type TeamInput struct {
	TeamName         string `json:"teamName" binding:"required"`
	ParticipantCount int    `json:"participantCount" binding:"required"`
}

// Normalize trims all string fields in place. Runs before validation so
// whitespace-only values fail the non-empty checks.
func (r *SubmitRequest) Normalize() {
	r.RaceID = strings.TrimSpace(r.RaceID)
	r.Unit.UnitName = strings.TrimSpace(r.Unit.UnitName)
	r.Unit.Region = strings.TrimSpace(r.Unit.Region)
	r.Leader.FirstName = strings.TrimSpace(r.Leader.FirstName)
	r.Leader.LastName = strings.TrimSpace(r.Leader.LastName)
	r.Leader.Email = strings.TrimSpace(r.Leader.Email)
	r.Leader.Phone = strings.TrimSpace(r.Leader.Phone)
	for i := range r.Teams {
		r.Teams[i].TeamName = strings.TrimSpace(r.Teams[i].TeamName)
	}
}

// ValidateStructure runs the payload-shape checks: required fields non-empty
// after trimming, a syntactically valid email, and the team-count bound.
// First failure wins. Race existence and participant bounds are checked
// later, once the race row is loaded.
func ValidateStructure(r *SubmitRequest, maxTeams int) *apperr.Error {
	required := []struct{ name, value string }{
		{"raceId", r.RaceID},
		{"unitName", r.Unit.UnitName},
		{"firstName", r.Leader.FirstName},
		{"lastName", r.Leader.LastName},
		{"email", r.Leader.Email},
		{"phone", r.Leader.Phone},
	}
	for _, f := range required {
		if f.value == "" {
			return apperr.NewMsg(apperr.CodeInvalidPayload,
				fmt.Sprintf("Requête invalide : le champ « %s » est obligatoire.", f.name))
		}
	}
	if _, err := mail.ParseAddress(r.Leader.Email); err != nil {
		return apperr.NewMsg(apperr.CodeInvalidPayload, "Requête invalide : adresse email mal formée.")
	}

	if len(r.Teams) == 0 {
		return apperr.NewMsg(apperr.CodeInvalidPayload, "Requête invalide : au moins une équipe est requise.")
	}
	if len(r.Teams) > maxTeams {
		return apperr.NewMsg(apperr.CodeTooManyTeams,
			fmt.Sprintf("Nombre d'équipes trop élevé : %d maximum par inscription.", maxTeams))
	}
	for _, t := range r.Teams {
		if t.TeamName == "" {
			return apperr.NewMsg(apperr.CodeInvalidPayload, "Requête invalide : chaque équipe doit avoir un nom.")
		}
	}
	return nil
}

// ValidateTeams checks every team against the race's participant bounds,
// then the registration-wide sum against the race maximum as an aggregate
// ceiling. Both the per-team bound and the aggregate ceiling are enforced.
func ValidateTeams(race *models.Race, teams []TeamInput) *apperr.Error {
	sum := 0
	for _, t := range teams {
		if t.ParticipantCount < 1 || t.ParticipantCount < race.MinParticipants || t.ParticipantCount > race.MaxParticipants {
			return apperr.NewMsg(apperr.CodeParticipantConstraint,
				fmt.Sprintf("L'équipe « %s » doit compter entre %d et %d participants.",
					t.TeamName, race.MinParticipants, race.MaxParticipants))
		}
		sum += t.ParticipantCount
	}
	if sum > race.MaxParticipants {
		return apperr.NewMsg(apperr.CodeParticipantConstraint,
			fmt.Sprintf("Le total des participants (%d) dépasse la limite de %d pour la course %s.",
				sum, race.MaxParticipants, race.Name))
	}
	return nil
}

// TotalParticipants sums the submitted team counts. Call after ValidateTeams.
func TotalParticipants(teams []TeamInput) int {
	sum := 0
	for _, t := range teams {
		sum += t.ParticipantCount
	}
	return sum
}
