package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/expedition-service/internal/domain"
)

// PickupRepository defines persistence access for pickups. Deleting a pickup
// cascades to its timeline entries and occurrences at the database level.
type PickupRepository interface {
	Create(ctx context.Context, pickup *domain.Pickup) error
	Update(ctx context.Context, pickup *domain.Pickup) error
	GetByID(ctx context.Context, id string) (*domain.Pickup, error)
	ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]domain.Pickup, error)
	Delete(ctx context.Context, id string) error
	DeleteAllByWorkspace(ctx context.Context, workspaceID string) (int64, error)
}

type pickupRepository struct {
	pool *pgxpool.Pool
}

// NewPickupRepository returns a Postgres-backed implementation.
func NewPickupRepository(pool *pgxpool.Pool) PickupRepository {
	return &pickupRepository{pool: pool}
}

func (r *pickupRepository) Create(ctx context.Context, pickup *domain.Pickup) error {
	const query = `
        INSERT INTO pickups (workspace_id, code, carrier_name, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		pickup.WorkspaceID,
		pickup.Code,
		pickup.CarrierName,
		pickup.Status,
	).Scan(&pickup.ID, &pickup.CreatedAt, &pickup.UpdatedAt)
}

func (r *pickupRepository) Update(ctx context.Context, pickup *domain.Pickup) error {
	const query = `
        UPDATE pickups SET code=$1, carrier_name=$2, status=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		pickup.Code,
		pickup.CarrierName,
		pickup.Status,
		pickup.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pickupRepository) GetByID(ctx context.Context, id string) (*domain.Pickup, error) {
	const query = `
        SELECT id, workspace_id, code, carrier_name, status, created_at, updated_at
        FROM pickups WHERE id=$1`

	var p domain.Pickup
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.WorkspaceID,
		&p.Code,
		&p.CarrierName,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pickupRepository) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]domain.Pickup, error) {
	const query = `
        SELECT id, workspace_id, code, carrier_name, status, created_at, updated_at
        FROM pickups WHERE workspace_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pickups []domain.Pickup
	for rows.Next() {
		var p domain.Pickup
		if err := rows.Scan(
			&p.ID,
			&p.WorkspaceID,
			&p.Code,
			&p.CarrierName,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		pickups = append(pickups, p)
	}
	return pickups, rows.Err()
}

func (r *pickupRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM pickups WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pickupRepository) DeleteAllByWorkspace(ctx context.Context, workspaceID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM pickups WHERE workspace_id=$1`, workspaceID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
