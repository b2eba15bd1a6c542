package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/expedition-service/internal/domain"
)

// OccurrenceRepository defines persistence access for pickup occurrences.
// Same (pickup_id, id) keying as the timeline repository.
type OccurrenceRepository interface {
	Create(ctx context.Context, occurrence *domain.Occurrence) error
	GetByPickup(ctx context.Context, pickupID, occurrenceID string) (*domain.Occurrence, error)
	ListByPickup(ctx context.Context, pickupID string) ([]domain.Occurrence, error)
	Resolve(ctx context.Context, pickupID, occurrenceID string, resolvedAt time.Time, resolvedBy *string) error
}

type occurrenceRepository struct {
	pool *pgxpool.Pool
}

// NewOccurrenceRepository returns a Postgres-backed implementation.
func NewOccurrenceRepository(pool *pgxpool.Pool) OccurrenceRepository {
	return &occurrenceRepository{pool: pool}
}

func (r *occurrenceRepository) Create(ctx context.Context, occurrence *domain.Occurrence) error {
	const query = `
        INSERT INTO pickup_occurrences (pickup_id, description, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		occurrence.PickupID,
		occurrence.Description,
		occurrence.Status,
	).Scan(&occurrence.ID, &occurrence.CreatedAt)
}

func (r *occurrenceRepository) GetByPickup(ctx context.Context, pickupID, occurrenceID string) (*domain.Occurrence, error) {
	const query = `
        SELECT id, pickup_id, description, status, resolvido_em, resolvido_por, created_at
        FROM pickup_occurrences WHERE pickup_id=$1 AND id=$2`

	var o domain.Occurrence
	if err := r.pool.QueryRow(ctx, query, pickupID, occurrenceID).Scan(
		&o.ID,
		&o.PickupID,
		&o.Description,
		&o.Status,
		&o.ResolvedAt,
		&o.ResolvedBy,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *occurrenceRepository) ListByPickup(ctx context.Context, pickupID string) ([]domain.Occurrence, error) {
	const query = `
        SELECT id, pickup_id, description, status, resolvido_em, resolvido_por, created_at
        FROM pickup_occurrences WHERE pickup_id=$1
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, pickupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occurrences []domain.Occurrence
	for rows.Next() {
		var o domain.Occurrence
		if err := rows.Scan(
			&o.ID,
			&o.PickupID,
			&o.Description,
			&o.Status,
			&o.ResolvedAt,
			&o.ResolvedBy,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}

func (r *occurrenceRepository) Resolve(ctx context.Context, pickupID, occurrenceID string, resolvedAt time.Time, resolvedBy *string) error {
	const query = `
        UPDATE pickup_occurrences
        SET status=$1, resolvido_em=$2, resolvido_por=$3
        WHERE pickup_id=$4 AND id=$5`

	cmd, err := r.pool.Exec(ctx, query, domain.OccurrenceStatusResolved, resolvedAt, resolvedBy, pickupID, occurrenceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
