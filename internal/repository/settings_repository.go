package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/expedition-service/internal/domain"
)

// TinySettingsRepository defines persistence access for per-workspace ERP settings.
type TinySettingsRepository interface {
	GetByWorkspaceID(ctx context.Context, workspaceID string) (*domain.TinySettings, error)
	Upsert(ctx context.Context, settings *domain.TinySettings) error
	UpdateEnvironment(ctx context.Context, workspaceID string, env domain.TinyEnvironment) error
}

type tinySettingsRepository struct {
	pool *pgxpool.Pool
}

// NewTinySettingsRepository returns a Postgres-backed implementation.
func NewTinySettingsRepository(pool *pgxpool.Pool) TinySettingsRepository {
	return &tinySettingsRepository{pool: pool}
}

func (r *tinySettingsRepository) GetByWorkspaceID(ctx context.Context, workspaceID string) (*domain.TinySettings, error) {
	const query = `
        SELECT id, workspace_id, environment, api_token_encrypted, api_token_test_encrypted,
               is_active, created_at, updated_at
        FROM tiny_settings WHERE workspace_id=$1`

	var s domain.TinySettings
	if err := r.pool.QueryRow(ctx, query, workspaceID).Scan(
		&s.ID,
		&s.WorkspaceID,
		&s.Environment,
		&s.APITokenEncrypted,
		&s.APITokenTestEncrypted,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *tinySettingsRepository) Upsert(ctx context.Context, settings *domain.TinySettings) error {
	const query = `
        INSERT INTO tiny_settings (workspace_id, environment, api_token_encrypted, api_token_test_encrypted, is_active)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (workspace_id) DO UPDATE SET
            environment=EXCLUDED.environment,
            api_token_encrypted=EXCLUDED.api_token_encrypted,
            api_token_test_encrypted=EXCLUDED.api_token_test_encrypted,
            is_active=EXCLUDED.is_active,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		settings.WorkspaceID,
		settings.Environment,
		settings.APITokenEncrypted,
		settings.APITokenTestEncrypted,
		settings.IsActive,
	).Scan(&settings.ID, &settings.CreatedAt, &settings.UpdatedAt)
}

func (r *tinySettingsRepository) UpdateEnvironment(ctx context.Context, workspaceID string, env domain.TinyEnvironment) error {
	const query = `
        UPDATE tiny_settings SET environment=$1, updated_at=NOW()
        WHERE workspace_id=$2`

	cmd, err := r.pool.Exec(ctx, query, env, workspaceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
