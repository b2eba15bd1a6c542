package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/expedition-service/internal/domain"
)

// CarrierRepository defines persistence access for the carrier registry.
// List returns carriers in creation order (serial id); resolution depends on a
// stable scan sequence, so the ordering here is load-bearing.
type CarrierRepository interface {
	Create(ctx context.Context, carrier *domain.Carrier) error
	Update(ctx context.Context, carrier *domain.Carrier) error
	GetByID(ctx context.Context, id int64) (*domain.Carrier, error)
	List(ctx context.Context) ([]domain.Carrier, error)
}

type carrierRepository struct {
	pool *pgxpool.Pool
}

// NewCarrierRepository returns a Postgres-backed implementation.
func NewCarrierRepository(pool *pgxpool.Pool) CarrierRepository {
	return &carrierRepository{pool: pool}
}

func (r *carrierRepository) Create(ctx context.Context, carrier *domain.Carrier) error {
	const query = `
        INSERT INTO carriers (nome, nome_display, aliases, is_active)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		carrier.Nome,
		carrier.NomeDisplay,
		carrier.Aliases,
		carrier.IsActive,
	).Scan(&carrier.ID, &carrier.CreatedAt, &carrier.UpdatedAt)
}

func (r *carrierRepository) Update(ctx context.Context, carrier *domain.Carrier) error {
	const query = `
        UPDATE carriers SET nome=$1, nome_display=$2, aliases=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		carrier.Nome,
		carrier.NomeDisplay,
		carrier.Aliases,
		carrier.IsActive,
		carrier.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *carrierRepository) GetByID(ctx context.Context, id int64) (*domain.Carrier, error) {
	const query = `
        SELECT id, nome, nome_display, aliases, is_active, created_at, updated_at
        FROM carriers WHERE id=$1`

	var c domain.Carrier
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Nome,
		&c.NomeDisplay,
		&c.Aliases,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *carrierRepository) List(ctx context.Context) ([]domain.Carrier, error) {
	const query = `
        SELECT id, nome, nome_display, aliases, is_active, created_at, updated_at
        FROM carriers ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carriers []domain.Carrier
	for rows.Next() {
		var c domain.Carrier
		if err := rows.Scan(
			&c.ID,
			&c.Nome,
			&c.NomeDisplay,
			&c.Aliases,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		carriers = append(carriers, c)
	}
	return carriers, rows.Err()
}
