package tiny

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/expedition-service/internal/config"
	apperrors "github.com/spec-kit/expedition-service/pkg/util"
)

// LegacyClient talks to the token-authenticated api2 endpoints
// (https://api.tiny.com.br/api2/<operation>.php). The decrypted token is
// supplied per call and never stored on the client.
type LegacyClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewLegacyClient builds a client with an explicit timeout; the ERP is a third
// party, so we never rely on the transport default.
func NewLegacyClient(cfg config.TinyConfig, logger *zap.Logger) *LegacyClient {
	return &LegacyClient{
		baseURL: strings.TrimRight(cfg.LegacyBaseURL, "/"),
		client:  &http.Client{Timeout: cfg.CallTimeout()},
		logger:  logger,
	}
}

// Call posts a form-encoded request to <base>/<endpoint>.php with the token and
// formato embedded, returning a tagged response. Read endpoints are idempotent;
// the single write endpoint is only reachable through the order sync gate.
func (c *LegacyClient) Call(ctx context.Context, endpoint, token string, params url.Values, format Format) (*Response, error) {
	if token == "" {
		return nil, apperrors.NewNotConfigured("legacy API token is not configured")
	}
	if format != FormatJSON && format != FormatXML {
		format = FormatJSON
	}

	form := url.Values{}
	for key, vals := range params {
		for _, v := range vals {
			form.Add(key, v)
		}
	}
	form.Set("token", token)
	form.Set("formato", strings.ToLower(string(format)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint+".php", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("tiny legacy call", zap.String("endpoint", endpoint), zap.String("formato", string(format)))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewUpstreamRejected(resp.StatusCode, string(body))
	}

	if format == FormatXML {
		return &Response{Format: FormatXML, Raw: string(body)}, nil
	}

	var value map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &value); err != nil {
			return nil, apperrors.NewMalformedJSON(string(body), err)
		}
	}
	return &Response{Format: FormatJSON, Value: value}, nil
}

// SearchOrders queries orders by free text (pedidos.pesquisa).
func (c *LegacyClient) SearchOrders(ctx context.Context, token, search string) (*Response, error) {
	params := url.Values{}
	if search != "" {
		params.Set("pesquisa", search)
	}
	return c.Call(ctx, "pedidos.pesquisa", token, params, FormatJSON)
}

// GetOrder fetches a single order (pedido.obter).
func (c *LegacyClient) GetOrder(ctx context.Context, token, orderID string) (*Response, error) {
	params := url.Values{}
	params.Set("id", orderID)
	return c.Call(ctx, "pedido.obter", token, params, FormatJSON)
}

// GetExpedition fetches expedition/shipment metadata (expedicao.obter). The
// endpoint answers XML only, so callers receive the raw document.
func (c *LegacyClient) GetExpedition(ctx context.Context, token, expeditionID string) (*Response, error) {
	params := url.Values{}
	params.Set("idExpedicao", expeditionID)
	return c.Call(ctx, "expedicao.obter", token, params, FormatXML)
}

// SearchCarriers queries the carrier catalogue (transportadoras.pesquisa).
func (c *LegacyClient) SearchCarriers(ctx context.Context, token, search string) (*Response, error) {
	params := url.Values{}
	if search != "" {
		params.Set("pesquisa", search)
	}
	return c.Call(ctx, "transportadoras.pesquisa", token, params, FormatJSON)
}

// UpdateOrderStatus changes an order's situacao (pedido.alterar.situacao).
// Not idempotent on the ERP side; must only be reached through the order sync
// dry-run gate, never from a route handler.
func (c *LegacyClient) UpdateOrderStatus(ctx context.Context, token, orderID, situacao string) (*Response, error) {
	params := url.Values{}
	params.Set("id", orderID)
	params.Set("situacao", situacao)
	return c.Call(ctx, "pedido.alterar.situacao", token, params, FormatJSON)
}
