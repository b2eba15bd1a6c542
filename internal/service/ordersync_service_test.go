package service

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/events"
	"github.com/spec-kit/expedition-service/internal/tiny"
	apperrors "github.com/spec-kit/expedition-service/pkg/util"
)

type fakeOAuthCaller struct {
	calls  []tiny.CallDescription
	tokens []string
	result *tiny.APIResult
	err    error
}

func (f *fakeOAuthCaller) Do(_ context.Context, desc tiny.CallDescription, accessToken string) (*tiny.APIResult, error) {
	f.calls = append(f.calls, desc)
	f.tokens = append(f.tokens, accessToken)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type legacyWriteCall struct {
	token    string
	orderID  string
	situacao string
}

type fakeLegacyWriter struct {
	calls    []legacyWriteCall
	response *tiny.Response
	err      error
}

func (f *fakeLegacyWriter) UpdateOrderStatus(_ context.Context, token, orderID, situacao string) (*tiny.Response, error) {
	f.calls = append(f.calls, legacyWriteCall{token: token, orderID: orderID, situacao: situacao})
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeTokenSource struct {
	token string
	err   error
}

func (f *fakeTokenSource) AccessToken(context.Context, string) (string, error) {
	return f.token, f.err
}

type fakeCredentialSource struct {
	environment domain.TinyEnvironment
	legacyToken string
	tokenErr    error
}

func (f *fakeCredentialSource) Environment(context.Context, string) domain.TinyEnvironment {
	return f.environment
}

func (f *fakeCredentialSource) GetToken(context.Context, string, domain.TinyEnvironment) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.legacyToken, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type syncFixture struct {
	svc        *OrderSyncService
	oauth      *fakeOAuthCaller
	legacy     *fakeLegacyWriter
	tokens     *fakeTokenSource
	creds      *fakeCredentialSource
	dispatcher *recordingDispatcher
}

func newSyncFixture(defaultDryRun bool) *syncFixture {
	f := &syncFixture{
		oauth:      &fakeOAuthCaller{result: &tiny.APIResult{Status: http.StatusOK, Data: map[string]any{"ok": true}}},
		legacy:     &fakeLegacyWriter{response: &tiny.Response{Format: tiny.FormatJSON, Value: map[string]any{"retorno": "ok"}}},
		tokens:     &fakeTokenSource{token: "bearer-token"},
		creds:      &fakeCredentialSource{environment: domain.TinyEnvironmentProduction, legacyToken: "legacy-test-token"},
		dispatcher: &recordingDispatcher{},
	}
	f.svc = NewOrderSyncService(OrderSyncDependencies{
		OAuth:         f.oauth,
		Legacy:        f.legacy,
		Tokens:        f.tokens,
		Credentials:   f.creds,
		Dispatcher:    f.dispatcher,
		Logger:        zap.NewNop(),
		DefaultDryRun: defaultDryRun,
	})
	return f
}

func boolPtr(v bool) *bool { return &v }

func TestMarkShippedDefaultsToDryRun(t *testing.T) {
	f := newSyncFixture(true)

	result, err := f.svc.MarkShipped(context.Background(), "ws-1", "42", MarkShippedOptions{})
	if err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if !result.DryRun {
		t.Fatal("expected dry-run to default on")
	}
	if len(f.oauth.calls) != 0 {
		t.Fatalf("dry-run must not touch the network, got %d calls", len(f.oauth.calls))
	}
	if len(f.legacy.calls) != 0 {
		t.Fatal("dry-run must not touch the legacy API")
	}
	if len(f.dispatcher.published) != 0 {
		t.Fatal("dry-run must not publish a shipped event")
	}
}

func TestMarkShippedDryRunDescribesExactCall(t *testing.T) {
	f := newSyncFixture(true)

	result, err := f.svc.MarkShipped(context.Background(), "ws-1", "42", MarkShippedOptions{})
	if err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if result.Call.Method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", result.Call.Method)
	}
	if result.Call.Path != "/pedidos/42/situacao" {
		t.Fatalf("path = %s", result.Call.Path)
	}
	if got := result.Call.Body["situacao"]; got != tiny.SituacaoShipped {
		t.Fatalf("body situacao = %v, want %d", got, tiny.SituacaoShipped)
	}
}

func TestMarkShippedLiveIssuesSameDescription(t *testing.T) {
	f := newSyncFixture(true)

	result, err := f.svc.MarkShipped(context.Background(), "ws-1", "42", MarkShippedOptions{DryRun: boolPtr(false)})
	if err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if result.DryRun {
		t.Fatal("explicit override should disable dry-run")
	}
	if len(f.oauth.calls) != 1 {
		t.Fatalf("expected one v3 call, got %d", len(f.oauth.calls))
	}
	issued := f.oauth.calls[0]
	if issued.Method != result.Call.Method || issued.Path != result.Call.Path {
		t.Fatalf("issued call %+v differs from described call %+v", issued, result.Call)
	}
	if issued.Body["situacao"] != result.Call.Body["situacao"] {
		t.Fatal("issued body differs from described body")
	}
	if f.oauth.tokens[0] != "bearer-token" {
		t.Fatalf("call used token %q", f.oauth.tokens[0])
	}
	if len(f.dispatcher.published) != 1 || f.dispatcher.published[0].Type != events.EventOrderMarkedShipped {
		t.Fatal("expected a shipped event after a live call")
	}
}

func TestMarkShippedLiveWithoutAccessToken(t *testing.T) {
	f := newSyncFixture(false)
	f.tokens.token = ""

	_, err := f.svc.MarkShipped(context.Background(), "ws-1", "42", MarkShippedOptions{})
	if code := domainCode(t, err); code != "UNAUTHORIZED" {
		t.Fatalf("code = %s, want UNAUTHORIZED", code)
	}
	if len(f.oauth.calls) != 0 {
		t.Fatal("no call should be issued without a token")
	}
}

func TestMarkShippedUpstreamRejection(t *testing.T) {
	f := newSyncFixture(false)
	f.oauth.result = &tiny.APIResult{Status: http.StatusForbidden, RawText: "acesso negado"}

	_, err := f.svc.MarkShipped(context.Background(), "ws-1", "42", MarkShippedOptions{})
	if code := domainCode(t, err); code != "UPSTREAM_REJECTED" {
		t.Fatalf("code = %s, want UPSTREAM_REJECTED", code)
	}
	de := apperrors.ToDomainError(err)
	if de.Details["upstream_status"] != http.StatusForbidden {
		t.Fatalf("details = %+v", de.Details)
	}
	if len(f.dispatcher.published) != 0 {
		t.Fatal("rejected call must not publish a shipped event")
	}
}

func TestMarkShippedTestEnvironmentUsesLegacyAPI(t *testing.T) {
	f := newSyncFixture(false)
	f.creds.environment = domain.TinyEnvironmentTest

	result, err := f.svc.MarkShipped(context.Background(), "ws-1", "42", MarkShippedOptions{})
	if err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if result.Environment != domain.TinyEnvironmentTest {
		t.Fatalf("environment = %s", result.Environment)
	}
	if len(f.oauth.calls) != 0 {
		t.Fatal("test environment must not use the v3 API")
	}
	if len(f.legacy.calls) != 1 {
		t.Fatalf("expected one legacy call, got %d", len(f.legacy.calls))
	}
	call := f.legacy.calls[0]
	if call.token != "legacy-test-token" {
		t.Fatalf("legacy call used token %q, want the decrypted test token", call.token)
	}
	if call.orderID != "42" || call.situacao != "5" {
		t.Fatalf("legacy call = %+v", call)
	}
}

func TestMarkShippedTestEnvironmentDryRun(t *testing.T) {
	f := newSyncFixture(true)
	f.creds.environment = domain.TinyEnvironmentTest

	result, err := f.svc.MarkShipped(context.Background(), "ws-1", "42", MarkShippedOptions{})
	if err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if !result.DryRun {
		t.Fatal("expected dry-run")
	}
	if len(f.legacy.calls) != 0 {
		t.Fatal("dry-run must not reach the legacy API")
	}
	if result.Call.Path != "/pedido.alterar.situacao.php" {
		t.Fatalf("path = %s", result.Call.Path)
	}
}

func TestMarkShippedRequiresOrderID(t *testing.T) {
	f := newSyncFixture(true)

	_, err := f.svc.MarkShipped(context.Background(), "ws-1", "  ", MarkShippedOptions{})
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}
}
