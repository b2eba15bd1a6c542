package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/events"
	"github.com/spec-kit/expedition-service/internal/tiny"
	apperrors "github.com/spec-kit/expedition-service/pkg/util"
)

// OAuthCaller executes v3 call descriptions. Satisfied by *tiny.OAuthClient.
type OAuthCaller interface {
	Do(ctx context.Context, desc tiny.CallDescription, accessToken string) (*tiny.APIResult, error)
}

// LegacyWriter performs the legacy status mutation. Satisfied by
// *tiny.LegacyClient. This is the only path allowed to reach that endpoint.
type LegacyWriter interface {
	UpdateOrderStatus(ctx context.Context, token, orderID, situacao string) (*tiny.Response, error)
}

// AccessTokenSource yields the workspace's stored bearer token, "" when absent.
type AccessTokenSource interface {
	AccessToken(ctx context.Context, workspaceID string) (string, error)
}

// CredentialSource resolves the active environment and decrypts legacy tokens.
// Satisfied by *VaultService.
type CredentialSource interface {
	Environment(ctx context.Context, workspaceID string) domain.TinyEnvironment
	GetToken(ctx context.Context, workspaceID string, env domain.TinyEnvironment) (string, error)
}

// OrderSyncService performs the state-mutating "mark shipped" call against the
// ERP behind a dry-run gate. The gate defaults to safe: no mutation unless an
// operator explicitly disables it or the deployment default says otherwise.
type OrderSyncService struct {
	oauth         OAuthCaller
	legacy        LegacyWriter
	tokens        AccessTokenSource
	credentials   CredentialSource
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	defaultDryRun bool
}

// OrderSyncDependencies bundles collaborators for the sync service.
type OrderSyncDependencies struct {
	OAuth         OAuthCaller
	Legacy        LegacyWriter
	Tokens        AccessTokenSource
	Credentials   CredentialSource
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	DefaultDryRun bool
}

// NewOrderSyncService builds the service. DefaultDryRun comes from config so
// tests can set it deterministically.
func NewOrderSyncService(deps OrderSyncDependencies) *OrderSyncService {
	return &OrderSyncService{
		oauth:         deps.OAuth,
		legacy:        deps.Legacy,
		tokens:        deps.Tokens,
		credentials:   deps.Credentials,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		defaultDryRun: deps.DefaultDryRun,
	}
}

// MarkShippedOptions carries the per-call dry-run override.
type MarkShippedOptions struct {
	DryRun *bool
}

// MarkShippedResult reports what happened (or would happen). Call is the exact
// wire shape whether or not it was issued, so dry-run/live parity can be
// asserted.
type MarkShippedResult struct {
	DryRun      bool                   `json:"dryRun"`
	Environment domain.TinyEnvironment `json:"environment"`
	Call        tiny.CallDescription   `json:"call"`
	Result      map[string]any         `json:"result,omitempty"`
}

// MarkShipped marks an ERP order as shipped (situacao 5). In the production
// environment the mutation goes through the bearer-authenticated v3 API; in the
// test environment it goes through the legacy API with the test token. Dry-run
// builds the identical call description and stops before the network.
func (s *OrderSyncService) MarkShipped(ctx context.Context, workspaceID, orderID string, opts MarkShippedOptions) (*MarkShippedResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apperrors.NewValidationError("order id is required", nil)
	}

	dryRun := s.defaultDryRun
	if opts.DryRun != nil {
		dryRun = *opts.DryRun
	}

	env := domain.TinyEnvironmentProduction
	if s.credentials != nil {
		env = s.credentials.Environment(ctx, workspaceID)
	}

	if env == domain.TinyEnvironmentTest {
		return s.markShippedLegacy(ctx, workspaceID, orderID, dryRun)
	}
	return s.markShippedV3(ctx, workspaceID, orderID, dryRun)
}

func (s *OrderSyncService) markShippedV3(ctx context.Context, workspaceID, orderID string, dryRun bool) (*MarkShippedResult, error) {
	result := &MarkShippedResult{
		DryRun:      dryRun,
		Environment: domain.TinyEnvironmentProduction,
		Call:        tiny.MarkShippedCall(orderID),
	}

	if dryRun {
		s.logger.Info("mark shipped dry-run",
			zap.String("workspace_id", workspaceID),
			zap.String("order_id", orderID))
		return result, nil
	}

	accessToken, err := s.tokens.AccessToken(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, apperrors.NewUnauthorized("no access token for workspace; authenticate with Tiny first")
	}

	upstream, err := s.oauth.Do(ctx, result.Call, accessToken)
	if err != nil {
		return nil, err
	}
	if upstream.Status < 200 || upstream.Status > 299 {
		return nil, apperrors.NewUpstreamRejected(upstream.Status, upstream.RawText)
	}

	result.Result = upstream.Data
	s.publishShipped(ctx, workspaceID, orderID, upstream.Status)
	return result, nil
}

func (s *OrderSyncService) markShippedLegacy(ctx context.Context, workspaceID, orderID string, dryRun bool) (*MarkShippedResult, error) {
	situacao := strconv.Itoa(tiny.SituacaoShipped)
	result := &MarkShippedResult{
		DryRun:      dryRun,
		Environment: domain.TinyEnvironmentTest,
		Call: tiny.CallDescription{
			Method: "POST",
			Path:   "/pedido.alterar.situacao.php",
			Body:   map[string]any{"id": orderID, "situacao": situacao},
		},
	}

	if dryRun {
		s.logger.Info("mark shipped dry-run (legacy)",
			zap.String("workspace_id", workspaceID),
			zap.String("order_id", orderID))
		return result, nil
	}

	token, err := s.credentials.GetToken(ctx, workspaceID, domain.TinyEnvironmentTest)
	if err != nil {
		return nil, err
	}

	resp, err := s.legacy.UpdateOrderStatus(ctx, token, orderID, situacao)
	if err != nil {
		return nil, err
	}
	if resp.Format == tiny.FormatJSON {
		result.Result = resp.Value
	} else if resp.Raw != "" {
		result.Result = map[string]any{"raw": resp.Raw}
	}

	s.publishShipped(ctx, workspaceID, orderID, 200)
	return result, nil
}

func (s *OrderSyncService) publishShipped(ctx context.Context, workspaceID, orderID string, upstreamStatus int) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventOrderMarkedShipped,
		Subject: orderID,
		Payload: events.OrderMarkedShippedPayload{
			WorkspaceID:    workspaceID,
			OrderID:        orderID,
			UpstreamStatus: upstreamStatus,
		},
	})
}
