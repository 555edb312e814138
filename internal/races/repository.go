package races

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raid-scout/backend/internal/models"
)

const raceColumns = `id, name, participation_price, min_participants, max_participants, race_date, description, created_at`

// Repository reads race reference data. Races are created out of band and
// never written from this service.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a races repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a race by ID. Returns pgx.ErrNoRows when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	const q = `SELECT ` + raceColumns + ` FROM races WHERE id = $1`
	var race models.Race
	err := r.pool.QueryRow(ctx, q, id).Scan(&race.ID, &race.Name, &race.ParticipationPrice,
		&race.MinParticipants, &race.MaxParticipants, &race.RaceDate, &race.Description, &race.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &race, nil
}

// List returns all races ordered by date then name.
func (r *Repository) List(ctx context.Context) ([]models.Race, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+raceColumns+` FROM races ORDER BY race_date, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Race
	for rows.Next() {
		var race models.Race
		if err := rows.Scan(&race.ID, &race.Name, &race.ParticipationPrice,
			&race.MinParticipants, &race.MaxParticipants, &race.RaceDate, &race.Description, &race.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, race)
	}
	return list, rows.Err()
}
