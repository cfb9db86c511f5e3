package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testIssuer = "https://auth.test.example.com/realms/care"

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-123",
		"iss":   testIssuer,
		"exp":   time.Now().Add(1 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"email": "nurse@example.com",
		"name":  "Sato Hanako",
		"role":  "Staff",
	}
}

// TestVerifier_ParseAndVerifyToken_Success tests successful token parsing
func TestVerifier_ParseAndVerifyToken_Success(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	verifier := NewVerifier(Config{Issuer: testIssuer}, newMockJWKS(publicKey))

	principal, err := verifier.ParseAndVerifyToken(signToken(t, privateKey, "test-key-id", validClaims()))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if principal.UserID != "user-123" {
		t.Errorf("Expected UserID 'user-123', got '%s'", principal.UserID)
	}
	if principal.Email != "nurse@example.com" {
		t.Errorf("Expected email claim, got '%s'", principal.Email)
	}
	if len(principal.Roles) != 1 || principal.Roles[0] != RoleStaff {
		t.Errorf("Expected roles [staff], got %v", principal.Roles)
	}
}

func TestVerifier_RealmAccessRoles(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	verifier := NewVerifier(Config{Issuer: testIssuer}, newMockJWKS(publicKey))

	claims := validClaims()
	delete(claims, "role")
	claims["realm_access"] = map[string]interface{}{"roles": []interface{}{"ADMIN", "offline_access"}}

	principal, err := verifier.ParseAndVerifyToken(signToken(t, privateKey, "test-key-id", claims))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !principal.HasRole(RoleAdmin) {
		t.Errorf("Expected admin role, got %v", principal.Roles)
	}
}

func TestVerifier_ParseAndVerifyToken_EmptyToken(t *testing.T) {
	verifier := NewVerifier(Config{Issuer: testIssuer}, nil)

	_, err := verifier.ParseAndVerifyToken("  ")
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Expected ErrNoToken, got: %v", err)
	}
}

func TestVerifier_Rejections(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	otherKey, _ := generateTestKeyPair(t)

	tests := []struct {
		name    string
		cfg     Config
		kid     string
		key     *rsa.PrivateKey
		mutate  func(jwt.MapClaims)
		wantErr error
	}{
		{
			name:    "wrong issuer",
			cfg:     Config{Issuer: testIssuer},
			kid:     "test-key-id",
			key:     privateKey,
			mutate:  func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" },
			wantErr: ErrInvalidIssuer,
		},
		{
			name:    "expired",
			cfg:     Config{Issuer: testIssuer},
			kid:     "test-key-id",
			key:     privateKey,
			mutate:  func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() },
			wantErr: ErrInvalidToken,
		},
		{
			name:    "missing sub",
			cfg:     Config{Issuer: testIssuer},
			kid:     "test-key-id",
			key:     privateKey,
			mutate:  func(c jwt.MapClaims) { delete(c, "sub") },
			wantErr: ErrMissingSub,
		},
		{
			name:    "no kid",
			cfg:     Config{Issuer: testIssuer},
			key:     privateKey,
			mutate:  func(jwt.MapClaims) {},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "signed by unknown key",
			cfg:     Config{Issuer: testIssuer},
			kid:     "test-key-id",
			key:     otherKey,
			mutate:  func(jwt.MapClaims) {},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "wrong audience",
			cfg:     Config{Issuer: testIssuer, Audience: "care-record-service"},
			kid:     "test-key-id",
			key:     privateKey,
			mutate:  func(c jwt.MapClaims) { c["aud"] = "billing" },
			wantErr: ErrInvalidAudience,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := NewVerifier(tt.cfg, newMockJWKS(publicKey))
			claims := validClaims()
			tt.mutate(claims)

			_, err := verifier.ParseAndVerifyToken(signToken(t, tt.key, tt.kid, claims))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestVerifier_NoRoles(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	verifier := NewVerifier(Config{Issuer: testIssuer}, newMockJWKS(publicKey))

	claims := validClaims()
	delete(claims, "role")

	principal, err := verifier.ParseAndVerifyToken(signToken(t, privateKey, "test-key-id", claims))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(principal.Roles) != 0 {
		t.Errorf("Expected no roles, got %v", principal.Roles)
	}
}

func TestParseKeys(t *testing.T) {
	keys, err := parseKeys([]jwkKey{
		{Kty: "RSA", Kid: "k1", N: "sXch", E: "AQAB"},
		{Kty: "EC", Kid: "k2"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("Expected only the RSA key, got %d keys", len(keys))
	}
	if keys["k1"].E != 65537 {
		t.Errorf("Expected exponent 65537, got %d", keys["k1"].E)
	}

	if _, err := parseKeys([]jwkKey{{Kty: "RSA", Kid: "bad", N: "!!", E: "AQAB"}}); err == nil {
		t.Error("Expected error for malformed modulus")
	}
}

// Helper functions

// generateTestKeyPair generates an RSA key pair for testing
func generateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return privateKey, &privateKey.PublicKey
}

// newMockJWKS creates a fixed key set for testing
func newMockJWKS(publicKey *rsa.PublicKey) KeySource {
	return StaticKeys{"test-key-id": publicKey}
}
