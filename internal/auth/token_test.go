package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/expedition-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 30)

	tokenStr, expiresAt, err := tm.GenerateToken("op-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("token already expired")
	}

	claims, err := tm.ParseToken(tokenStr)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.OperatorID != "op-1" {
		t.Fatalf("operator id = %q", claims.OperatorID)
	}
	if claims.Role != domain.RoleAdmin {
		t.Fatalf("role = %q", claims.Role)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 30)
	verifier := NewTokenManager("secret-b", 30)

	tokenStr, _, err := issuer.GenerateToken("op-1", domain.RoleOperator)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := verifier.ParseToken(tokenStr); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 30)

	if _, err := tm.ParseToken("not-a-jwt"); err == nil {
		t.Fatal("expected parse failure")
	}
}
