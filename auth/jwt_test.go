package auth

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateAndExtractJWT(t *testing.T) {
	secret := "test_secret"
	username := "alice"
	isAdmin := true
	expiration := 10

	token, err := GenerateJWT(secret, username, isAdmin, expiration)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	gotUser, gotAdmin, err := ExtractUserAndAdminFromJWT(req, secret)
	if err != nil {
		t.Fatalf("ExtractUserAndAdminFromJWT failed: %v", err)
	}
	if gotUser != username {
		t.Errorf("Expected username %q, got %q", username, gotUser)
	}
	if gotAdmin != isAdmin {
		t.Errorf("Expected isAdmin %v, got %v", isAdmin, gotAdmin)
	}
}

func TestExtractUserAndAdminFromJWT_InvalidToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer invalidtoken")

	if _, _, err := ExtractUserAndAdminFromJWT(req, "test_secret"); err == nil {
		t.Error("Expected error for invalid token, got nil")
	}
}

func TestExtractUserAndAdminFromJWT_NoHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	if _, _, err := ExtractUserAndAdminFromJWT(req, "test_secret"); err == nil {
		t.Error("Expected error for missing Authorization header, got nil")
	}
}

func TestExtractUserAndAdminFromJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret_a", "alice", false, 10)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if _, _, err := ExtractUserAndAdminFromJWT(req, "secret_b"); err == nil {
		t.Error("Expected error for wrong secret, got nil")
	}
}

func TestGenerateJWT_Expiration(t *testing.T) {
	token, err := GenerateJWT("test_secret", "bob", false, 0) // expires immediately
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	// Wait to ensure token is expired
	time.Sleep(2 * time.Second)

	if _, _, err := ExtractUserAndAdminFromJWT(req, "test_secret"); err == nil {
		t.Error("Expected error for expired token, got nil")
	}
}
