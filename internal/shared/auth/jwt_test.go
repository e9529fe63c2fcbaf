package auth

import (
	"testing"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	token, err := SignToken("google:123", "alice@example.com", "Alice", "https://img.example/a.png")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "google:123" {
		t.Fatalf("sub = %q, want google:123", claims.Subject)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
	if claims.Name != "Alice" {
		t.Fatalf("name = %q", claims.Name)
	}
}

func TestSignRequiresSubject(t *testing.T) {
	if _, err := SignToken("", "a@b.c", "", ""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	token, err := SignToken("google:123", "", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := VerifyToken(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := VerifyToken("not-a-jwt"); err == nil {
		t.Fatal("expected error")
	}
}
