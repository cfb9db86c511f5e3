package auth

// Config holds the issuer and audience a JWKS-verified token must carry.
// Audience is optional.
type Config struct {
	Issuer   string
	JWKSURL  string
	Audience string
}
