package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/expedition-service/internal/domain"
)

// WorkspaceRepository defines persistence access for workspaces.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *domain.Workspace) error
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
	GetByName(ctx context.Context, name string) (*domain.Workspace, error)
}

type workspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository returns a Postgres-backed implementation.
func NewWorkspaceRepository(pool *pgxpool.Pool) WorkspaceRepository {
	return &workspaceRepository{pool: pool}
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	const query = `
        INSERT INTO workspaces (name)
        VALUES ($1)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query, workspace.Name).
		Scan(&workspace.ID, &workspace.CreatedAt)
}

func (r *workspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	const query = `
        SELECT id, name, created_at
        FROM workspaces WHERE id=$1`

	var ws domain.Workspace
	if err := r.pool.QueryRow(ctx, query, id).Scan(&ws.ID, &ws.Name, &ws.CreatedAt); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepository) GetByName(ctx context.Context, name string) (*domain.Workspace, error) {
	const query = `
        SELECT id, name, created_at
        FROM workspaces WHERE name=$1`

	var ws domain.Workspace
	if err := r.pool.QueryRow(ctx, query, name).Scan(&ws.ID, &ws.Name, &ws.CreatedAt); err != nil {
		return nil, err
	}
	return &ws, nil
}
