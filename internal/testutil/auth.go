package testutil

import (
	"crypto/rsa"
	"testing"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
)

// TestIssuer is the issuer of every token minted by GenerateTestJWT.
const TestIssuer = "https://auth.test.example.com/realms/care"

// CreateTestVerifier creates a verifier that accepts tokens signed by the
// returned private key.
func CreateTestVerifier(t *testing.T) (*auth.Verifier, *rsa.PrivateKey) {
	t.Helper()

	privateKey, publicKey := GenerateTestKeyPair(t)
	verifier := auth.NewVerifier(
		auth.Config{Issuer: TestIssuer},
		auth.StaticKeys{testKeyID: publicKey},
	)
	return verifier, privateKey
}
