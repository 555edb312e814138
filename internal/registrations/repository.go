package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/raid-scout/backend/internal/models"
	"github.com/raid-scout/backend/internal/units"
	"github.com/raid-scout/backend/pkg/apperr"
	"github.com/raid-scout/backend/pkg/database"
)

const uniqueViolation = "23505"

// Repository persists registrations and their teams.
type Repository struct {
	pool  *pgxpool.Pool
	units *units.Repository
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool, unitsRepo *units.Repository) *Repository {
	return &Repository{pool: pool, units: unitsRepo}
}

// CreateParams carries the validated, priced registration to persist.
type CreateParams struct {
	Race              *models.Race
	UnitName          string
	Region            string
	Leader            LeaderInput
	Teams             []TeamInput
	TotalParticipants int
	TotalPrice        decimal.Decimal
}

// Created is the committed row set of one submission.
type Created struct {
	Registration models.Registration
	Unit         models.Unit
	Leader       models.Leader
	Teams        []models.Team
}

// Create resolves the unit and persists the registration with all its teams
// in a single transaction; either every row commits or none does.
//
// Unit resolution has a read-then-write race: two concurrent submissions for
// the same new unit name can both observe "absent". The unique constraint on
// units.name is the arbiter; the loser retries its lookup once and then
// compares leaders like any existing-unit submission.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*Created, error) {
	for attempt := 0; attempt < 2; attempt++ {
		created, retry, err := r.createOnce(ctx, p)
		if retry {
			continue
		}
		return created, err
	}
	// Second attempt raced again; treat as the conflict it almost certainly is.
	return nil, apperr.New(apperr.CodeUnitLeaderConflict)
}

func (r *Repository) createOnce(ctx context.Context, p CreateParams) (created *Created, retry bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, apperr.Internal(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	unit, leader, err := r.units.GetByNameTx(ctx, tx, p.UnitName)
	if err != nil {
		return nil, false, apperr.Internal(fmt.Errorf("lookup unit: %w", err))
	}
	if unit == nil {
		unit = &models.Unit{Name: p.UnitName}
		if p.Region != "" {
			region := p.Region
			unit.Region = &region
		}
		leader = &models.Leader{
			FirstName: p.Leader.FirstName,
			LastName:  p.Leader.LastName,
			Email:     p.Leader.Email,
			Phone:     p.Leader.Phone,
		}
		if err := r.units.CreateWithLeaderTx(ctx, tx, unit, leader); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return nil, true, nil
			}
			return nil, false, apperr.Internal(fmt.Errorf("create unit: %w", err))
		}
	} else if !leader.Matches(p.Leader.FirstName, p.Leader.LastName, p.Leader.Email, p.Leader.Phone) {
		return nil, false, apperr.New(apperr.CodeUnitLeaderConflict)
	}

	var reg models.Registration
	const qReg = `INSERT INTO registrations (unit_id, race_id, total_participants, total_price, payment_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, unit_id, race_id, total_participants, total_price, payment_status, created_at`
	err = tx.QueryRow(ctx, qReg, unit.ID, p.Race.ID, p.TotalParticipants, p.TotalPrice, models.PaymentPending).
		Scan(&reg.ID, &reg.UnitID, &reg.RaceID, &reg.TotalParticipants, &reg.TotalPrice, &reg.PaymentStatus, &reg.CreatedAt)
	if err != nil {
		return nil, false, apperr.Internal(fmt.Errorf("insert registration: %w", err))
	}

	const qTeam = `INSERT INTO teams (registration_id, name, participant_count)
		VALUES ($1, $2, $3)
		RETURNING id, registration_id, name, participant_count, created_at`
	teams := make([]models.Team, 0, len(p.Teams))
	for _, t := range p.Teams {
		var team models.Team
		if err := tx.QueryRow(ctx, qTeam, reg.ID, t.TeamName, t.ParticipantCount).
			Scan(&team.ID, &team.RegistrationID, &team.Name, &team.ParticipantCount, &team.CreatedAt); err != nil {
			return nil, false, apperr.Internal(fmt.Errorf("insert team %q: %w", t.TeamName, err))
		}
		teams = append(teams, team)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, apperr.Internal(fmt.Errorf("commit: %w", err))
	}
	return &Created{Registration: reg, Unit: *unit, Leader: *leader, Teams: teams}, false, nil
}

// MarkPaid transitions a registration to PAID. Idempotent: a registration
// already PAID is reported as success without change. Returns NOT_FOUND for
// an unknown id.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	const q = `UPDATE registrations SET payment_status = $2 WHERE id = $1
		RETURNING id, unit_id, race_id, total_participants, total_price, payment_status, created_at`
	var reg models.Registration
	err := r.pool.QueryRow(ctx, q, id, models.PaymentPaid).
		Scan(&reg.ID, &reg.UnitID, &reg.RaceID, &reg.TotalParticipants, &reg.TotalPrice, &reg.PaymentStatus, &reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("mark paid: %w", err))
	}
	return &reg, nil
}

// ListFilter narrows and pages the admin registration and team listings.
type ListFilter struct {
	RaceID        *uuid.UUID
	UnitID        *uuid.UUID
	PaymentStatus string
	Search        string
	Sort          string
	Desc          bool
	Offset        int
	Limit         int
}

var registrationSortColumns = map[string]string{
	"created_at":  "r.created_at",
	"unit":        "u.name",
	"race":        "ra.name",
	"total_price": "r.total_price",
	"status":      "r.payment_status",
}

// RegistrationRow is a registration joined with its unit and race names.
type RegistrationRow struct {
	models.Registration
	UnitName string `json:"unitName"`
	RaceName string `json:"raceName"`
}

// List returns registrations matching the filter, with the total match count.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]RegistrationRow, int, error) {
	order := registrationSortColumns[f.Sort]
	if order == "" {
		order = "r.created_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	q := `SELECT r.id, r.unit_id, r.race_id, r.total_participants, r.total_price, r.payment_status, r.created_at,
		u.name, ra.name, COUNT(*) OVER ()
		FROM registrations r
		JOIN units u ON u.id = r.unit_id
		JOIN races ra ON ra.id = r.race_id
		WHERE ($1::uuid IS NULL OR r.race_id = $1)
		AND ($2::uuid IS NULL OR r.unit_id = $2)
		AND ($3 = '' OR r.payment_status = $3)
		AND ($4 = '' OR u.name ILIKE '%' || $4 || '%')
		ORDER BY ` + order + ` ` + dir + `
		LIMIT $5 OFFSET $6`
	rows, err := r.pool.Query(ctx, q, f.RaceID, f.UnitID, f.PaymentStatus, database.EscapeLike(f.Search), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []RegistrationRow
	var total int
	for rows.Next() {
		var row RegistrationRow
		if err := rows.Scan(&row.ID, &row.UnitID, &row.RaceID, &row.TotalParticipants, &row.TotalPrice,
			&row.PaymentStatus, &row.CreatedAt, &row.UnitName, &row.RaceName, &total); err != nil {
			return nil, 0, err
		}
		list = append(list, row)
	}
	return list, total, rows.Err()
}

// TeamRow is a team joined with its registration's unit and race names.
type TeamRow struct {
	models.Team
	UnitName string `json:"unitName"`
	RaceName string `json:"raceName"`
}

// ListTeams returns teams matching the filter, with the total match count.
func (r *Repository) ListTeams(ctx context.Context, f ListFilter) ([]TeamRow, int, error) {
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	q := `SELECT t.id, t.registration_id, t.name, t.participant_count, t.created_at,
		u.name, ra.name, COUNT(*) OVER ()
		FROM teams t
		JOIN registrations r ON r.id = t.registration_id
		JOIN units u ON u.id = r.unit_id
		JOIN races ra ON ra.id = r.race_id
		WHERE ($1::uuid IS NULL OR r.race_id = $1)
		AND ($2::uuid IS NULL OR r.unit_id = $2)
		AND ($3 = '' OR t.name ILIKE '%' || $3 || '%' OR u.name ILIKE '%' || $3 || '%')
		ORDER BY t.created_at ` + dir + `
		LIMIT $4 OFFSET $5`
	rows, err := r.pool.Query(ctx, q, f.RaceID, f.UnitID, database.EscapeLike(f.Search), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []TeamRow
	var total int
	for rows.Next() {
		var row TeamRow
		if err := rows.Scan(&row.ID, &row.RegistrationID, &row.Name, &row.ParticipantCount,
			&row.CreatedAt, &row.UnitName, &row.RaceName, &total); err != nil {
			return nil, 0, err
		}
		list = append(list, row)
	}
	return list, total, rows.Err()
}
