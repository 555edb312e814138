package units

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raid-scout/backend/internal/models"
	"github.com/raid-scout/backend/pkg/database"
)

// Repository handles unit and leader persistence. The engine-facing methods
// take an explicit pgx.Tx so unit resolution and registration creation share
// one atomic transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a units repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByNameTx returns the unit with its leader by exact unit name, inside tx.
// Returns (nil, nil, nil) when the unit does not exist.
func (r *Repository) GetByNameTx(ctx context.Context, tx pgx.Tx, name string) (*models.Unit, *models.Leader, error) {
	const q = `SELECT u.id, u.name, u.region, u.created_at,
		l.id, l.unit_id, l.first_name, l.last_name, l.email, l.phone, l.created_at
		FROM units u JOIN leaders l ON l.unit_id = u.id
		WHERE u.name = $1`
	var u models.Unit
	var l models.Leader
	err := tx.QueryRow(ctx, q, name).Scan(&u.ID, &u.Name, &u.Region, &u.CreatedAt,
		&l.ID, &l.UnitID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &u, &l, nil
}

// CreateWithLeaderTx inserts a unit and its leader inside tx. A unique
// violation on units.name means another transaction created the same unit
// concurrently; the caller arbitrates via the constraint error.
func (r *Repository) CreateWithLeaderTx(ctx context.Context, tx pgx.Tx, unit *models.Unit, leader *models.Leader) error {
	const qUnit = `INSERT INTO units (name, region) VALUES ($1, NULLIF($2, ''))
		RETURNING id, name, region, created_at`
	region := ""
	if unit.Region != nil {
		region = *unit.Region
	}
	if err := tx.QueryRow(ctx, qUnit, unit.Name, region).
		Scan(&unit.ID, &unit.Name, &unit.Region, &unit.CreatedAt); err != nil {
		return err
	}

	const qLeader = `INSERT INTO leaders (unit_id, first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, unit_id, created_at`
	return tx.QueryRow(ctx, qLeader, unit.ID, leader.FirstName, leader.LastName, leader.Email, leader.Phone).
		Scan(&leader.ID, &leader.UnitID, &leader.CreatedAt)
}

// UnitRow is a unit with its leader, for admin listings.
type UnitRow struct {
	Unit   models.Unit   `json:"unit"`
	Leader models.Leader `json:"leader"`
}

// ListFilter narrows and pages admin listings of units and leaders.
type ListFilter struct {
	Search string // matches unit name, leader name or email
	Offset int
	Limit  int
}

// List returns units with their leaders, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]UnitRow, int, error) {
	const q = `SELECT u.id, u.name, u.region, u.created_at,
		l.id, l.unit_id, l.first_name, l.last_name, l.email, l.phone, l.created_at,
		COUNT(*) OVER ()
		FROM units u JOIN leaders l ON l.unit_id = u.id
		WHERE ($1 = '' OR u.name ILIKE '%' || $1 || '%'
			OR l.first_name ILIKE '%' || $1 || '%'
			OR l.last_name ILIKE '%' || $1 || '%'
			OR l.email ILIKE '%' || $1 || '%')
		ORDER BY u.created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, database.EscapeLike(f.Search), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []UnitRow
	var total int
	for rows.Next() {
		var row UnitRow
		if err := rows.Scan(&row.Unit.ID, &row.Unit.Name, &row.Unit.Region, &row.Unit.CreatedAt,
			&row.Leader.ID, &row.Leader.UnitID, &row.Leader.FirstName, &row.Leader.LastName,
			&row.Leader.Email, &row.Leader.Phone, &row.Leader.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		list = append(list, row)
	}
	return list, total, rows.Err()
}
