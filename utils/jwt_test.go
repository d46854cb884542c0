package utils

import (
	"testing"

	"GoGallery/config"
)

func TestTokenRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "0123456789abcdef0123456789abcdef"

	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserId != 42 {
		t.Errorf("UserId = %d, want 42", claims.UserId)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	config.AppConfig.JWTSecret = "0123456789abcdef0123456789abcdef"

	if _, err := VerifyToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	config.AppConfig.JWTSecret = "0123456789abcdef0123456789abcdef"
	token, err := GenerateToken(1)
	if err != nil {
		t.Fatal(err)
	}

	config.AppConfig.JWTSecret = "ffffffffffffffffffffffffffffffff"
	if _, err := VerifyToken(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}
