package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expedition-service/internal/api/dto"
	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/service"
)

// SettingsHandler exposes the per-workspace Tiny integration settings. Token
// plaintext travels request-to-vault only; responses carry configured flags.
type SettingsHandler struct {
	vault *service.VaultService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(vault *service.VaultService) *SettingsHandler {
	return &SettingsHandler{vault: vault}
}

// Get handles GET /api/v1/settings/tiny.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	settings, err := h.vault.Settings(c.Context(), ws.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TinySettingsResponse{
		Environment:               string(settings.Environment),
		ProductionTokenConfigured: settings.APITokenEncrypted != "",
		TestTokenConfigured:       settings.APITokenTestEncrypted != "",
		IsActive:                  settings.IsActive,
	}})
}

// SetToken handles PUT /api/v1/settings/tiny/token.
func (h *SettingsHandler) SetToken(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var req dto.TokenUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	settings, err := h.vault.SetToken(c.Context(), ws.ID, domain.TinyEnvironment(req.Environment), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TinySettingsResponse{
		Environment:               string(settings.Environment),
		ProductionTokenConfigured: settings.APITokenEncrypted != "",
		TestTokenConfigured:       settings.APITokenTestEncrypted != "",
		IsActive:                  settings.IsActive,
	}})
}

// SetEnvironment handles PUT /api/v1/settings/tiny/environment (ADMIN).
func (h *SettingsHandler) SetEnvironment(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var req dto.EnvironmentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.vault.SetEnvironment(c.Context(), ws.ID, domain.TinyEnvironment(req.Environment)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"environment": req.Environment}})
}
