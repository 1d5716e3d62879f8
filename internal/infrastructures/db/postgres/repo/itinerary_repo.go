package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	derr "github.com/ozzus/flight-filter/internal/domain/errors"
	"github.com/ozzus/flight-filter/internal/domain/models"
)

type Repository struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Repository, error) {
	poolCfg, err := buildPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Repository{db: pool}, nil
}

func buildPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.StatementCacheCapacity = 0
	poolCfg.ConnConfig.DescriptionCacheCapacity = 0

	return poolCfg, nil
}

func (r *Repository) Close() {
	r.db.Close()
}

type segmentRow struct {
	ItineraryID string
	Departure   time.Time
	Arrival     time.Time
}

// Itineraries loads every stored itinerary with its segments in leg order.
func (r *Repository) Itineraries(ctx context.Context) ([]models.Itinerary, error) {
	const query = `
		SELECT
			itinerary_id,
			departure_at,
			arrival_at
		FROM itinerary_segments
		ORDER BY itinerary_id ASC, position ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query itinerary segments: %w", err)
	}
	defer rows.Close()

	segments := make([]segmentRow, 0)
	for rows.Next() {
		var row segmentRow
		if err := rows.Scan(&row.ItineraryID, &row.Departure, &row.Arrival); err != nil {
			return nil, fmt.Errorf("scan itinerary segment: %w", err)
		}
		segments = append(segments, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate itinerary segments: %w", err)
	}

	if len(segments) == 0 {
		return nil, derr.ErrItinerariesNotFound
	}

	return groupSegments(segments), nil
}

// groupSegments expects rows sorted by itinerary and position.
func groupSegments(rows []segmentRow) []models.Itinerary {
	result := make([]models.Itinerary, 0)
	for i := 0; i < len(rows); {
		j := i
		segments := make([]models.Segment, 0)
		for ; j < len(rows) && rows[j].ItineraryID == rows[i].ItineraryID; j++ {
			segments = append(segments, models.NewSegment(rows[j].Departure.UTC(), rows[j].Arrival.UTC()))
		}
		result = append(result, models.NewItineraryWithID(rows[i].ItineraryID, segments...))
		i = j
	}
	return result
}
