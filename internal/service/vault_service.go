package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/expedition-service/internal/crypto"
	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/repository"
	apperrors "github.com/spec-kit/expedition-service/pkg/util"
)

// VaultService stores and retrieves encrypted ERP credentials per workspace
// and per environment. Plaintext tokens exist only in the request that needs
// them; they are never persisted or logged.
type VaultService struct {
	workspaces repository.WorkspaceRepository
	settings   repository.TinySettingsRepository
	cipher     *crypto.Cipher
	logger     *zap.Logger
}

// VaultDependencies bundles requirements for the vault.
type VaultDependencies struct {
	WorkspaceRepo repository.WorkspaceRepository
	SettingsRepo  repository.TinySettingsRepository
	Cipher        *crypto.Cipher
	Logger        *zap.Logger
}

// NewVaultService builds the service.
func NewVaultService(deps VaultDependencies) *VaultService {
	return &VaultService{
		workspaces: deps.WorkspaceRepo,
		settings:   deps.SettingsRepo,
		cipher:     deps.Cipher,
		logger:     deps.Logger,
	}
}

// EnsureDefaultWorkspace returns the "Default" workspace, creating it on first
// access.
func (s *VaultService) EnsureDefaultWorkspace(ctx context.Context) (*domain.Workspace, error) {
	ws, err := s.workspaces.GetByName(ctx, domain.DefaultWorkspaceName)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	ws = &domain.Workspace{Name: domain.DefaultWorkspaceName}
	if err := s.workspaces.Create(ctx, ws); err != nil {
		return nil, err
	}
	s.logger.Info("bootstrapped default workspace", zap.String("workspace_id", ws.ID))
	return ws, nil
}

// ResolveWorkspace maps a workspace name from the request onto a record. The
// default workspace is created lazily; any other name must already exist.
func (s *VaultService) ResolveWorkspace(ctx context.Context, name string) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == domain.DefaultWorkspaceName {
		return s.EnsureDefaultWorkspace(ctx)
	}
	ws, err := s.workspaces.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("workspace", map[string]any{"name": name})
		}
		return nil, err
	}
	return ws, nil
}

// GetToken decrypts the token for the given environment on demand.
func (s *VaultService) GetToken(ctx context.Context, workspaceID string, env domain.TinyEnvironment) (string, error) {
	if !env.Valid() {
		return "", apperrors.NewValidationError("invalid environment", map[string]any{"environment": env})
	}

	settings, err := s.settings.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotConfigured("tiny settings not configured for workspace")
		}
		return "", err
	}

	ciphertext := settings.EncryptedTokenFor(env)
	if strings.TrimSpace(ciphertext) == "" {
		return "", apperrors.NewNotConfigured("no token stored for environment " + string(env))
	}

	plaintext, err := s.cipher.Decrypt(ciphertext)
	if err != nil {
		// logged without any token material
		s.logger.Error("token decryption failed", zap.String("workspace_id", workspaceID), zap.String("environment", string(env)))
		return "", apperrors.NewDomainError("DECRYPTION_FAILURE", "stored token could not be decrypted", http.StatusInternalServerError, nil)
	}
	return plaintext, nil
}

// SetToken encrypts and upserts the token for the given environment. The
// sibling environment's ciphertext is preserved. Last writer wins.
func (s *VaultService) SetToken(ctx context.Context, workspaceID string, env domain.TinyEnvironment, plaintext string) (*domain.TinySettings, error) {
	if !env.Valid() {
		return nil, apperrors.NewValidationError("invalid environment", map[string]any{"environment": env})
	}
	if strings.TrimSpace(plaintext) == "" {
		return nil, apperrors.NewValidationError("token must not be empty", nil)
	}

	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		settings = &domain.TinySettings{
			WorkspaceID: workspaceID,
			Environment: domain.TinyEnvironmentProduction,
			IsActive:    true,
		}
	}

	if env == domain.TinyEnvironmentTest {
		settings.APITokenTestEncrypted = ciphertext
	} else {
		settings.APITokenEncrypted = ciphertext
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	s.logger.Info("tiny token updated",
		zap.String("workspace_id", workspaceID),
		zap.String("environment", string(env)))
	return settings, nil
}

// Settings returns the settings row for display. Token columns stay encrypted;
// the handler masks them down to a configured/not-configured flag.
func (s *VaultService) Settings(ctx context.Context, workspaceID string) (*domain.TinySettings, error) {
	settings, err := s.settings.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotConfigured("tiny settings not configured for workspace")
		}
		return nil, err
	}
	return settings, nil
}

// SetEnvironment switches which token column outbound calls use. ADMIN only;
// the role check happens at the route.
func (s *VaultService) SetEnvironment(ctx context.Context, workspaceID string, env domain.TinyEnvironment) error {
	if !env.Valid() {
		return apperrors.NewValidationError("invalid environment", map[string]any{"environment": env})
	}
	if err := s.settings.UpdateEnvironment(ctx, workspaceID, env); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotConfigured("tiny settings not configured for workspace")
		}
		return err
	}
	return nil
}

// Environment reports the configured environment, defaulting to production
// when settings are absent.
func (s *VaultService) Environment(ctx context.Context, workspaceID string) domain.TinyEnvironment {
	settings, err := s.settings.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return domain.TinyEnvironmentProduction
	}
	if settings.Environment.Valid() {
		return settings.Environment
	}
	return domain.TinyEnvironmentProduction
}
