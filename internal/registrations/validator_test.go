package registrations

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raid-scout/backend/internal/models"
	"github.com/raid-scout/backend/pkg/apperr"
)

func validRequest() *SubmitRequest {
	return &SubmitRequest{
		RaceID: "2f0c8eec-90a4-4dfc-9c65-42a58c234d07",
		Unit:   UnitInput{UnitName: "1ère Meute de Namur", Region: "Namur"},
		Leader: LeaderInput{
			FirstName: "Marie",
			LastName:  "Dupont",
			Email:     "marie.dupont@example.org",
			Phone:     "+32 470 11 22 33",
		},
		Teams: []TeamInput{
			{TeamName: "Les Loups", ParticipantCount: 5},
			{TeamName: "Les Renards", ParticipantCount: 4},
		},
	}
}

func louveteaux() *models.Race {
	return &models.Race{
		Name:               "LOUVETEAUX",
		ParticipationPrice: decimal.RequireFromString("10.00"),
		MinParticipants:    3,
		MaxParticipants:    12,
	}
}

func TestValidateStructure(t *testing.T) {
	t.Run("valid payload passes", func(t *testing.T) {
		req := validRequest()
		req.Normalize()
		assert.Nil(t, ValidateStructure(req, DefaultMaxTeams))
	})

	t.Run("whitespace-only field is rejected", func(t *testing.T) {
		req := validRequest()
		req.Unit.UnitName = "   "
		req.Normalize()
		err := ValidateStructure(req, DefaultMaxTeams)
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeInvalidPayload, err.Code)
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		req := validRequest()
		req.Leader.Email = "pas-une-adresse"
		req.Normalize()
		err := ValidateStructure(req, DefaultMaxTeams)
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeInvalidPayload, err.Code)
	})

	t.Run("no teams is rejected", func(t *testing.T) {
		req := validRequest()
		req.Teams = nil
		req.Normalize()
		err := ValidateStructure(req, DefaultMaxTeams)
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeInvalidPayload, err.Code)
	})

	t.Run("too many teams is rejected with its own code", func(t *testing.T) {
		req := validRequest()
		req.Teams = nil
		for i := 0; i < DefaultMaxTeams+1; i++ {
			req.Teams = append(req.Teams, TeamInput{TeamName: "Équipe", ParticipantCount: 3})
		}
		req.Normalize()
		err := ValidateStructure(req, DefaultMaxTeams)
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeTooManyTeams, err.Code)
	})

	t.Run("unnamed team is rejected", func(t *testing.T) {
		req := validRequest()
		req.Teams[1].TeamName = " "
		req.Normalize()
		err := ValidateStructure(req, DefaultMaxTeams)
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeInvalidPayload, err.Code)
	})
}

func TestValidateTeams(t *testing.T) {
	race := louveteaux()

	t.Run("counts within bounds pass", func(t *testing.T) {
		assert.Nil(t, ValidateTeams(race, []TeamInput{
			{TeamName: "A", ParticipantCount: 5},
			{TeamName: "B", ParticipantCount: 4},
		}))
	})

	t.Run("below minimum is rejected", func(t *testing.T) {
		err := ValidateTeams(race, []TeamInput{{TeamName: "Solo", ParticipantCount: 1}})
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeParticipantConstraint, err.Code)
		assert.Contains(t, err.Message, "Solo")
	})

	t.Run("above maximum is rejected", func(t *testing.T) {
		err := ValidateTeams(race, []TeamInput{{TeamName: "Horde", ParticipantCount: 13}})
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeParticipantConstraint, err.Code)
	})

	t.Run("zero or negative is rejected", func(t *testing.T) {
		err := ValidateTeams(race, []TeamInput{{TeamName: "Vide", ParticipantCount: 0}})
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeParticipantConstraint, err.Code)
	})

	t.Run("aggregate above race maximum is rejected", func(t *testing.T) {
		err := ValidateTeams(race, []TeamInput{
			{TeamName: "A", ParticipantCount: 7},
			{TeamName: "B", ParticipantCount: 7},
		})
		require.NotNil(t, err)
		assert.Equal(t, apperr.CodeParticipantConstraint, err.Code)
	})
}

func TestPricing(t *testing.T) {
	race := louveteaux()
	teams := []TeamInput{
		{TeamName: "A", ParticipantCount: 5},
		{TeamName: "B", ParticipantCount: 4},
	}

	total := TotalParticipants(teams)
	assert.Equal(t, 9, total)

	price := race.PriceFor(total)
	assert.True(t, price.Equal(decimal.RequireFromString("90.00")), "got %s", price)
	assert.Equal(t, "90.00", price.StringFixed(2))
}

func TestPricingNoRoundingDrift(t *testing.T) {
	race := &models.Race{
		ParticipationPrice: decimal.RequireFromString("12.50"),
		MinParticipants:    1,
		MaxParticipants:    100,
	}
	// 12.50 * 3 would drift under binary floats; decimal stays exact.
	assert.Equal(t, "37.50", race.PriceFor(3).StringFixed(2))
}
