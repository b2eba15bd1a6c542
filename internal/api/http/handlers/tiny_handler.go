package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expedition-service/internal/api/dto"
	"github.com/spec-kit/expedition-service/internal/config"
	"github.com/spec-kit/expedition-service/internal/service"
	"github.com/spec-kit/expedition-service/internal/tiny"
)

// TinyHandler exposes the ERP integration surface: legacy reads, the OAuth
// flows, and the gated mark-shipped mutation.
type TinyHandler struct {
	cfg    config.TinyConfig
	vault  *service.VaultService
	legacy *tiny.LegacyClient
	oauth  *tiny.OAuthClient
	tokens *service.TokenStore
	sync   *service.OrderSyncService
}

// TinyHandlerDependencies bundles collaborators for the handler.
type TinyHandlerDependencies struct {
	Cfg    config.TinyConfig
	Vault  *service.VaultService
	Legacy *tiny.LegacyClient
	OAuth  *tiny.OAuthClient
	Tokens *service.TokenStore
	Sync   *service.OrderSyncService
}

// NewTinyHandler constructs handler.
func NewTinyHandler(deps TinyHandlerDependencies) *TinyHandler {
	return &TinyHandler{
		cfg:    deps.Cfg,
		vault:  deps.Vault,
		legacy: deps.Legacy,
		oauth:  deps.OAuth,
		tokens: deps.Tokens,
		sync:   deps.Sync,
	}
}

// legacyToken resolves the decrypted token for the workspace's configured
// environment, falling back to the static env token when nothing is stored.
func (h *TinyHandler) legacyToken(c *fiber.Ctx, workspaceID string) (string, error) {
	env := h.vault.Environment(c.Context(), workspaceID)
	token, err := h.vault.GetToken(c.Context(), workspaceID, env)
	if err != nil {
		if h.cfg.LegacyTokenEnv != "" {
			return h.cfg.LegacyTokenEnv, nil
		}
		return "", err
	}
	return token, nil
}

// SearchOrders handles GET /api/v1/tiny/orders?search=.
func (h *TinyHandler) SearchOrders(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	token, err := h.legacyToken(c, ws.ID)
	if err != nil {
		return err
	}
	resp, err := h.legacy.SearchOrders(c.Context(), token, c.Query("search"))
	if err != nil {
		return err
	}
	return writeLegacyResponse(c, resp)
}

// GetOrder handles GET /api/v1/tiny/orders/:id.
func (h *TinyHandler) GetOrder(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	token, err := h.legacyToken(c, ws.ID)
	if err != nil {
		return err
	}
	resp, err := h.legacy.GetOrder(c.Context(), token, c.Params("id"))
	if err != nil {
		return err
	}
	return writeLegacyResponse(c, resp)
}

// GetExpedition handles GET /api/v1/tiny/expeditions/:id.
func (h *TinyHandler) GetExpedition(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	token, err := h.legacyToken(c, ws.ID)
	if err != nil {
		return err
	}
	resp, err := h.legacy.GetExpedition(c.Context(), token, c.Params("id"))
	if err != nil {
		return err
	}
	return writeLegacyResponse(c, resp)
}

// SearchCarrierCatalogue handles GET /api/v1/tiny/carriers?search=.
func (h *TinyHandler) SearchCarrierCatalogue(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	token, err := h.legacyToken(c, ws.ID)
	if err != nil {
		return err
	}
	resp, err := h.legacy.SearchCarriers(c.Context(), token, c.Query("search"))
	if err != nil {
		return err
	}
	return writeLegacyResponse(c, resp)
}

// AuthorizeURL handles GET /api/v1/tiny/oauth/authorize-url. Issues a one-shot
// state nonce bound to the workspace.
func (h *TinyHandler) AuthorizeURL(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	state, err := h.tokens.IssueState(c.Context(), ws.ID)
	if err != nil {
		return err
	}

	redirectURI := h.cfg.RedirectURI
	if override := c.Query("redirect_uri"); override != "" {
		redirectURI = override
	}
	url := h.oauth.AuthorizationURL(h.cfg.ClientID, redirectURI, state)
	return c.JSON(fiber.Map{"data": fiber.Map{"url": url, "state": state}})
}

// Callback handles GET /api/v1/tiny/oauth/callback?code=&state=. Exchanges the
// code and stores the access token for the workspace the state was issued to.
func (h *TinyHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return fiber.NewError(http.StatusBadRequest, "code and state required")
	}

	workspaceID, err := h.tokens.ConsumeState(c.Context(), state)
	if err != nil {
		return err
	}
	if workspaceID == "" {
		return fiber.NewError(http.StatusBadRequest, "unknown or expired state")
	}

	token, err := h.oauth.ExchangeCode(c.Context(), h.cfg.ClientID, h.cfg.ClientSecret, code, h.cfg.RedirectURI)
	if err != nil {
		return err
	}
	if err := h.tokens.SaveAccessToken(c.Context(), workspaceID, token.AccessToken, token.ExpiresIn); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"authenticated": true, "expires_in": token.ExpiresIn}})
}

// Exchange handles POST /api/v1/tiny/oauth/exchange (client credentials).
func (h *TinyHandler) Exchange(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var req dto.OAuthExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	clientID := req.ClientID
	clientSecret := req.ClientSecret
	if clientID == "" {
		clientID = h.cfg.ClientID
	}
	if clientSecret == "" {
		clientSecret = h.cfg.ClientSecret
	}
	if clientID == "" || clientSecret == "" {
		return fiber.NewError(http.StatusBadRequest, "client credentials required")
	}

	token, err := h.oauth.Exchange(c.Context(), clientID, clientSecret)
	if err != nil {
		return err
	}
	if err := h.tokens.SaveAccessToken(c.Context(), ws.ID, token.AccessToken, token.ExpiresIn); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"token_type": token.TokenType,
		"expires_in": token.ExpiresIn,
	}})
}

// MarkShipped handles PUT /api/v1/tiny/orders/:id/mark-shipped.
func (h *TinyHandler) MarkShipped(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var req dto.MarkShippedRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid payload")
		}
	}

	result, err := h.sync.MarkShipped(c.Context(), ws.ID, c.Params("id"), service.MarkShippedOptions{DryRun: req.DryRun})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

func writeLegacyResponse(c *fiber.Ctx, resp *tiny.Response) error {
	switch resp.Format {
	case tiny.FormatJSON:
		return c.JSON(fiber.Map{"data": resp.Value})
	case tiny.FormatXML:
		c.Set("Content-Type", "application/xml")
		return c.SendString(resp.Raw)
	default:
		return c.SendString(resp.Raw)
	}
}
