package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "storefront-test", ExpirationMinutes: 60}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: userID,
		Email:  "shopper@example.com",
		Role:   "customer",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "shopper@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != "customer" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: "customer"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: "customer"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expiry validation to fail")
	}
}

func TestMintRequiresUserID(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected missing user id to fail")
	}
}
