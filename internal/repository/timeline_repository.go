package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/expedition-service/internal/domain"
)

// TimelineRepository defines persistence access for pickup timeline entries.
// Lookups are keyed by (pickup_id, id) so an entry can never be reached through
// a pickup it does not belong to.
type TimelineRepository interface {
	Create(ctx context.Context, entry *domain.TimelineEntry) error
	GetByPickup(ctx context.Context, pickupID, entryID string) (*domain.TimelineEntry, error)
	ListByPickup(ctx context.Context, pickupID string) ([]domain.TimelineEntry, error)
	Close(ctx context.Context, pickupID, entryID string, closedAt time.Time, closedBy *string) error
}

type timelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository returns a Postgres-backed implementation.
func NewTimelineRepository(pool *pgxpool.Pool) TimelineRepository {
	return &timelineRepository{pool: pool}
}

func (r *timelineRepository) Create(ctx context.Context, entry *domain.TimelineEntry) error {
	const query = `
        INSERT INTO pickup_timeline_entries (pickup_id, description, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		entry.PickupID,
		entry.Description,
		entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *timelineRepository) GetByPickup(ctx context.Context, pickupID, entryID string) (*domain.TimelineEntry, error) {
	const query = `
        SELECT id, pickup_id, description, status, encerrado_em, encerrado_por, created_at
        FROM pickup_timeline_entries WHERE pickup_id=$1 AND id=$2`

	var e domain.TimelineEntry
	if err := r.pool.QueryRow(ctx, query, pickupID, entryID).Scan(
		&e.ID,
		&e.PickupID,
		&e.Description,
		&e.Status,
		&e.ClosedAt,
		&e.ClosedBy,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *timelineRepository) ListByPickup(ctx context.Context, pickupID string) ([]domain.TimelineEntry, error) {
	const query = `
        SELECT id, pickup_id, description, status, encerrado_em, encerrado_por, created_at
        FROM pickup_timeline_entries WHERE pickup_id=$1
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, pickupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TimelineEntry
	for rows.Next() {
		var e domain.TimelineEntry
		if err := rows.Scan(
			&e.ID,
			&e.PickupID,
			&e.Description,
			&e.Status,
			&e.ClosedAt,
			&e.ClosedBy,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *timelineRepository) Close(ctx context.Context, pickupID, entryID string, closedAt time.Time, closedBy *string) error {
	const query = `
        UPDATE pickup_timeline_entries
        SET status=$1, encerrado_em=$2, encerrado_por=$3
        WHERE pickup_id=$4 AND id=$5`

	cmd, err := r.pool.Exec(ctx, query, domain.TimelineStatusClosed, closedAt, closedBy, pickupID, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
