package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
)

const testKeyID = "test-key-id"

// GenerateTestKeyPair generates an RSA key pair for testing JWT tokens
func GenerateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return privateKey, &privateKey.PublicKey
}

// GenerateTestJWT creates a signed token for userID. roles may be empty to
// exercise the user-directory role lookup.
func GenerateTestJWT(t *testing.T, privateKey *rsa.PrivateKey, userID, email string, roles []string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userID,
		"iss": TestIssuer,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	if len(roles) > 0 {
		claims["roles"] = interfaceSlice(roles)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID

	tokenString, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}

// GenerateAdminToken creates an admin token for testing
func GenerateAdminToken(t *testing.T, privateKey *rsa.PrivateKey) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "admin-123", "admin@example.com", []string{auth.RoleAdmin})
}

// GenerateStaffToken creates a staff token for testing
func GenerateStaffToken(t *testing.T, privateKey *rsa.PrivateKey) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "staff-123", "staff@example.com", []string{auth.RoleStaff})
}

// interfaceSlice converts []string to []interface{} for JWT claims
func interfaceSlice(strings []string) []interface{} {
	result := make([]interface{}, len(strings))
	for i, s := range strings {
		result[i] = s
	}
	return result
}
