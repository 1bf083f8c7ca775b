package dataset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL store repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Name returns the source name.
func (r *PostgresRepository) Name() string {
	return "postgres"
}

// Load retrieves every store ordered by insertion.
func (r *PostgresRepository) Load(ctx context.Context) ([]Point, error) {
	query := `
		SELECT
			store_id, plaza_key,
			lat, lng,
			location_type, master_segment, environment, socioeconomic_level,
			area, weight
		FROM stores
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying stores: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			p                                         Point
			lat, lng                                  float64
			plazaKey, locationType, segment, env, nse *string
		)
		err := rows.Scan(
			&p.StoreID,
			&plazaKey,
			&lat,
			&lng,
			&locationType,
			&segment,
			&env,
			&nse,
			&p.Area,
			&p.Weight,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning store: %w", err)
		}

		p.Location = NewLocation(lat, lng)
		p.PlazaKey = deref(plazaKey)
		p.LocationType = deref(locationType)
		p.MasterSegment = deref(segment)
		p.Environment = deref(env)
		p.SocioeconomicLevel = deref(nse)
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stores: %w", err)
	}

	return points, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
