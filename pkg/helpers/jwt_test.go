package helpers

import (
	"testing"
	"time"
)

func TestJWTGenerateAndParse(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("super-secret"), TTL: time.Hour}
	userID := "user-123"

	tok, exp, err := m.Generate(userID)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", exp)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("userID mismatch: got %q want %q", claims.UserID, userID)
	}
}

func TestJWTParseExpired(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("secret"), TTL: -time.Minute}
	tok, _, err := m.Generate("u1")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := m.Parse(tok); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestJWTParseWrongSecret(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("right-secret"), TTL: time.Hour}
	tok, _, err := m.Generate("u2")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	other := &JWTManager{Secret: []byte("wrong-secret"), TTL: time.Hour}
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("expected error for invalid signature, got nil")
	}
}

func TestJWTParseMalformed(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("k"), TTL: time.Hour}
	if _, err := m.Parse("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}
}
