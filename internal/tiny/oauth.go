package tiny

import (
	"bytes"
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

// SituacaoShipped is the v3 situacao code meaning "shipped".
const SituacaoShipped = 5

// TokenResponse is the result of an OAuth2 token exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// APIResult is the outcome of a bearer-authenticated v3 call. Data is set when
// the response was JSON; RawText carries any other content-type. A 204 yields
// an empty success.
type APIResult struct {
	Status  int
	Data    map[string]any
	RawText string
}

// CallDescription is the wire shape of a v3 call. Dry-run returns it verbatim;
// live execution issues exactly this description, so the two are bit-identical.
type CallDescription struct {
	Method string         `json:"method"`
	Path   string         `json:"path"`
	Body   map[string]any `json:"body,omitempty"`
}

// MarkShippedCall describes the status mutation for one order.
func MarkShippedCall(orderID string) CallDescription {
	return CallDescription{
		Method: http.MethodPut,
		Path:   "/pedidos/" + orderID + "/situacao",
		Body:   map[string]any{"situacao": SituacaoShipped},
	}
}

// OAuthClient implements the client-credentials exchange, the
// authorization-code redirect construction, and the bearer-authenticated v3
// REST client. No implicit retries anywhere: callers decide based on status.
type OAuthClient struct {
	authBaseURL string
	apiBaseURL  string
	client      *http.Client
	logger      *zap.Logger
}

// NewOAuthClient builds the client from config.
func NewOAuthClient(cfg config.TinyConfig, logger *zap.Logger) *OAuthClient {
	return &OAuthClient{
		authBaseURL: strings.TrimRight(cfg.AuthBaseURL, "/"),
		apiBaseURL:  strings.TrimRight(cfg.APIBaseURL, "/"),
		client:      &http.Client{Timeout: cfg.CallTimeout()},
		logger:      logger,
	}
}

// Exchange performs the client-credentials grant. A non-2xx answer fails with
// the upstream status and body attached for diagnosis.
func (c *OAuthClient) Exchange(ctx context.Context, clientID, clientSecret string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	return c.tokenRequest(ctx, form)
}

// ExchangeCode swaps an authorization code for tokens (callback leg of the
// authorization-code flow).
func (c *OAuthClient) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	return c.tokenRequest(ctx, form)
}

func (c *OAuthClient) tokenRequest(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBaseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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
		return nil, apperrors.NewOAuthExchangeFailed(resp.StatusCode, string(body))
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, apperrors.NewMalformedJSON(string(body), err)
	}
	return &token, nil
}

// AuthorizationURL builds the redirect target for the authorization-code flow.
// Scope is fixed to openid; state is optional.
func (c *OAuthClient) AuthorizationURL(clientID, redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", "openid")
	q.Set("response_type", "code")
	if state != "" {
		q.Set("state", state)
	}
	return c.authBaseURL + "/auth?" + q.Encode()
}

// Request issues a bearer-authenticated v3 call.
func (c *OAuthClient) Request(ctx context.Context, method, path string, body any, accessToken string) (*APIResult, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBaseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("tiny v3 call", zap.String("method", method), zap.String("path", path))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	result := &APIResult{Status: resp.StatusCode}
	if resp.StatusCode == http.StatusNoContent {
		return result, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if len(raw) > 0 {
			var data map[string]any
			if err := json.Unmarshal(raw, &data); err != nil {
				return nil, apperrors.NewMalformedJSON(string(raw), err)
			}
			result.Data = data
		}
		return result, nil
	}

	result.RawText = string(raw)
	return result, nil
}

// Do executes a previously built call description. Used by the order sync so
// the live request matches the dry-run description exactly.
func (c *OAuthClient) Do(ctx context.Context, desc CallDescription, accessToken string) (*APIResult, error) {
	var body any
	if desc.Body != nil {
		body = desc.Body
	}
	return c.Request(ctx, desc.Method, desc.Path, body, accessToken)
}

// GetOrders lists v3 orders.
func (c *OAuthClient) GetOrders(ctx context.Context, accessToken string) (*APIResult, error) {
	return c.Request(ctx, http.MethodGet, "/pedidos", nil, accessToken)
}

// GetOrder fetches one v3 order.
func (c *OAuthClient) GetOrder(ctx context.Context, orderID, accessToken string) (*APIResult, error) {
	return c.Request(ctx, http.MethodGet, "/pedidos/"+orderID, nil, accessToken)
}
