package utils

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("user-123", "host", "super-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	userID, role, err := ParseToken(tok, "super-secret")
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", userID, "user-123")
	}
	if role != "host" {
		t.Fatalf("role mismatch: got %q want %q", role, "host")
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u1", "admin", "secret", -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, _, err := ParseToken(tok, "secret"); err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", "host", "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, _, err := ParseToken(tok, "wrong-secret"); err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseToken("not.a.jwt", "k"); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
