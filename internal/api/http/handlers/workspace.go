package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/service"
	apperrors "github.com/spec-kit/expedition-service/pkg/util"
)

const workspaceKey = "workspace"

// WorkspaceResolver resolves the request's workspace from the X-Workspace
// header, bootstrapping the default workspace on first access.
func WorkspaceResolver(vault *service.VaultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws, err := vault.ResolveWorkspace(c.Context(), c.Get("X-Workspace"))
		if err != nil {
			return apperrors.MapError(err)
		}
		c.Locals(workspaceKey, ws)
		return c.Next()
	}
}

// WorkspaceFromContext retrieves the resolved workspace.
func WorkspaceFromContext(c *fiber.Ctx) (*domain.Workspace, bool) {
	val := c.Locals(workspaceKey)
	if val == nil {
		return nil, false
	}
	ws, ok := val.(*domain.Workspace)
	return ws, ok
}
