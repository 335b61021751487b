package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "od-provider-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := newTestManager()

	token, jti, err := m.GenerateAccessToken(42, "student@college.edu", "student", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if jti == "" {
		t.Error("expected a non-empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "student@college.edu" {
		t.Errorf("Email = %s", claims.Email)
	}
	if claims.Role != "student" {
		t.Errorf("Role = %s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %s, want access", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %s, want %s", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := newTestManager()

	token, _, err := m.GenerateRefreshToken(1, "user@college.edu", "teacher", 0)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %s, want refresh", claims.TokenType)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewJWTManager(JWTConfig{Secret: "a-different-secret", Expiry: time.Hour, RefreshExpiry: time.Hour, Issuer: "x"})

	token, _, err := other.GenerateAccessToken(1, "user@college.edu", "student", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        -time.Minute, // already expired
		RefreshExpiry: time.Hour,
		Issuer:        "od-provider-test",
	})

	token, _, err := m.GenerateAccessToken(1, "user@college.edu", "student", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("got %v, want ErrExpiredToken", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := newTestManager()
	if _, err := m.ValidateToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	m := newTestManager()

	refresh, _, err := m.GenerateRefreshToken(7, "user@college.edu", "student", 2)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	access, _, err := m.RefreshAccessToken(refresh, 2)
	if err != nil {
		t.Fatalf("RefreshAccessToken: %v", err)
	}

	claims, err := m.ValidateToken(access)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %s, want access", claims.TokenType)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}

	// Access tokens cannot be used to refresh
	if _, _, err := m.RefreshAccessToken(access, 2); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestGetTokenExpiry(t *testing.T) {
	m := newTestManager()

	token, _, err := m.GenerateAccessToken(1, "user@college.edu", "student", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	expiry, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("GetTokenExpiry: %v", err)
	}

	until := time.Until(expiry)
	if until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("expiry %v from now, want about an hour", until)
	}
}
