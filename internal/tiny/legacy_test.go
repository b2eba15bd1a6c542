package tiny

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/expedition-service/internal/config"
	apperrors "github.com/spec-kit/expedition-service/pkg/util"
)

func newLegacyClient(baseURL string) *LegacyClient {
	return NewLegacyClient(config.TinyConfig{LegacyBaseURL: baseURL, CallTimeoutSec: 5}, zap.NewNop())
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return de.Code
}

func TestLegacyCallSendsTokenAndFormat(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/pedidos.pesquisa.php" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		captured = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"retorno":{"status":"OK"}}`))
	}))
	defer server.Close()

	client := newLegacyClient(server.URL)
	resp, err := client.SearchOrders(context.Background(), "secret-token", "camiseta")
	if err != nil {
		t.Fatalf("SearchOrders: %v", err)
	}

	if captured.Get("token") != "secret-token" {
		t.Fatalf("token = %q", captured.Get("token"))
	}
	if captured.Get("formato") != "json" {
		t.Fatalf("formato = %q", captured.Get("formato"))
	}
	if captured.Get("pesquisa") != "camiseta" {
		t.Fatalf("pesquisa = %q", captured.Get("pesquisa"))
	}
	if resp.Format != FormatJSON {
		t.Fatalf("format = %s", resp.Format)
	}
	if resp.Value["retorno"] == nil {
		t.Fatalf("value = %+v", resp.Value)
	}
}

func TestLegacyCallRequiresToken(t *testing.T) {
	client := newLegacyClient("http://127.0.0.1:0")

	_, err := client.SearchOrders(context.Background(), "", "x")
	if code := errorCode(t, err); code != "NOT_CONFIGURED" {
		t.Fatalf("code = %s, want NOT_CONFIGURED", code)
	}
}

func TestLegacyExpeditionReturnsRawXML(t *testing.T) {
	const doc = `<?xml version="1.0"?><retorno><status>OK</status></retorno>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("formato") != "xml" {
			t.Errorf("formato = %q, want xml", r.PostForm.Get("formato"))
		}
		if r.PostForm.Get("idExpedicao") != "987" {
			t.Errorf("idExpedicao = %q", r.PostForm.Get("idExpedicao"))
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(doc))
	}))
	defer server.Close()

	client := newLegacyClient(server.URL)
	resp, err := client.GetExpedition(context.Background(), "tok", "987")
	if err != nil {
		t.Fatalf("GetExpedition: %v", err)
	}
	if resp.Format != FormatXML {
		t.Fatalf("format = %s, want XML", resp.Format)
	}
	if resp.Raw != doc {
		t.Fatalf("raw = %q", resp.Raw)
	}
	if resp.Value != nil {
		t.Fatal("XML responses must not be parsed into Value")
	}
}

func TestLegacyCallUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("manutencao"))
	}))
	defer server.Close()

	client := newLegacyClient(server.URL)
	_, err := client.GetOrder(context.Background(), "tok", "42")
	if code := errorCode(t, err); code != "UPSTREAM_REJECTED" {
		t.Fatalf("code = %s, want UPSTREAM_REJECTED", code)
	}
	de := apperrors.ToDomainError(err)
	if de.Details["upstream_status"] != http.StatusServiceUnavailable {
		t.Fatalf("details = %+v", de.Details)
	}
	if de.Details["upstream_body"] != "manutencao" {
		t.Fatalf("details = %+v", de.Details)
	}
}

func TestLegacyCallMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`<html>surprise</html>`))
	}))
	defer server.Close()

	client := newLegacyClient(server.URL)
	_, err := client.GetOrder(context.Background(), "tok", "42")
	if code := errorCode(t, err); code != "MALFORMED_JSON" {
		t.Fatalf("code = %s, want MALFORMED_JSON", code)
	}
	de := apperrors.ToDomainError(err)
	if de.Details["body"] != "<html>surprise</html>" {
		t.Fatalf("raw body not preserved: %+v", de.Details)
	}
}

func TestLegacyUpdateOrderStatusParams(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pedido.alterar.situacao.php" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		captured = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"retorno":{"status":"OK"}}`))
	}))
	defer server.Close()

	client := newLegacyClient(server.URL)
	if _, err := client.UpdateOrderStatus(context.Background(), "tok", "42", "5"); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if captured.Get("id") != "42" || captured.Get("situacao") != "5" {
		t.Fatalf("form = %v", captured)
	}
}
