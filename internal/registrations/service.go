package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/raid-scout/backend/internal/models"
	"github.com/raid-scout/backend/internal/races"
	"github.com/raid-scout/backend/pkg/apperr"
)

// Service is the registration engine: it validates a submission, reconciles
// the unit and leader, computes totals and persists atomically.
type Service struct {
	repo     *Repository
	races    *races.Repository
	maxTeams int
	logger   *zap.Logger
}

// NewService creates the registration engine. maxTeams <= 0 falls back to
// DefaultMaxTeams.
func NewService(repo *Repository, racesRepo *races.Repository, maxTeams int, logger *zap.Logger) *Service {
	if maxTeams <= 0 {
		maxTeams = DefaultMaxTeams
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, races: racesRepo, maxTeams: maxTeams, logger: logger}
}

// Pricing is the price breakdown echoed in the confirmation snapshot.
type Pricing struct {
	TotalParticipants   int             `json:"totalParticipants"`
	PricePerParticipant decimal.Decimal `json:"pricePerParticipant"`
	TotalPrice          decimal.Decimal `json:"totalPrice"`
}

// Snapshot is the full confirmation returned on success, self-sufficient for
// rendering a receipt without follow-up reads.
type Snapshot struct {
	ID            uuid.UUID            `json:"id"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time            `json:"createdAt"`
	Race          models.Race          `json:"race"`
	Unit          models.Unit          `json:"unit"`
	Leader        models.Leader        `json:"leader"`
	Teams         []models.Team        `json:"teams"`
	Pricing       Pricing              `json:"pricing"`
}

// Submit runs the full registration flow. Failures carry a stable code from
// the apperr taxonomy; no partial state is ever left behind.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*Snapshot, error) {
	req.Normalize()
	if err := ValidateStructure(req, s.maxTeams); err != nil {
		return nil, err
	}

	raceID, err := uuid.Parse(req.RaceID)
	if err != nil {
		return nil, apperr.NewMsg(apperr.CodeInvalidPayload, "Requête invalide : identifiant de course mal formé.")
	}
	race, err := s.races.GetByID(ctx, raceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.CodeRaceNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("lookup race: %w", err))
	}

	if err := ValidateTeams(race, req.Teams); err != nil {
		return nil, err
	}

	total := TotalParticipants(req.Teams)
	created, err := s.repo.Create(ctx, CreateParams{
		Race:              race,
		UnitName:          req.Unit.UnitName,
		Region:            req.Unit.Region,
		Leader:            req.Leader,
		Teams:             req.Teams,
		TotalParticipants: total,
		TotalPrice:        race.PriceFor(total),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration created",
		zap.String("registration_id", created.Registration.ID.String()),
		zap.String("unit", created.Unit.Name),
		zap.String("race", race.Name),
		zap.Int("total_participants", total),
	)
	return s.snapshot(race, created), nil
}

func (s *Service) snapshot(race *models.Race, created *Created) *Snapshot {
	reg := created.Registration
	return &Snapshot{
		ID:            reg.ID,
		PaymentStatus: reg.PaymentStatus,
		CreatedAt:     reg.CreatedAt,
		Race:          *race,
		Unit:          created.Unit,
		Leader:        created.Leader,
		Teams:         created.Teams,
		Pricing: Pricing{
			TotalParticipants:   reg.TotalParticipants,
			PricePerParticipant: race.ParticipationPrice,
			TotalPrice:          reg.TotalPrice,
		},
	}
}
