package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestParseBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "valid header", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing scheme", header: "abc.def.ghi", want: ""},
		{name: "empty header", header: "", want: ""},
		{name: "wrong scheme", header: "Basic abc", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseBearerToken(tc.header); got != tc.want {
				t.Fatalf("ParseBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestVerifyAccessToken(t *testing.T) {
	valid := Claims{
		UserID:    "42",
		SessionID: "7",
		Role:      RoleWaiter,
		Email:     "staff@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token := signTestToken(t, valid, testSecret)
	claims, err := VerifyAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.UserID != "42" || claims.Role != RoleWaiter {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := VerifyAccessToken(token, "other-secret"); err == nil {
		t.Fatal("expected signature mismatch")
	}

	if _, err := VerifyAccessToken("", testSecret); err == nil {
		t.Fatal("expected error for empty token")
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	if _, err := VerifyAccessToken(signTestToken(t, expired, testSecret), testSecret); err == nil {
		t.Fatal("expected error for expired token")
	}

	missingExpiry := valid
	missingExpiry.ExpiresAt = nil
	if _, err := VerifyAccessToken(signTestToken(t, missingExpiry, testSecret), testSecret); err == nil {
		t.Fatal("expected error for token without expiry")
	}
}
