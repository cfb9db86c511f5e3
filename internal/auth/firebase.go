package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
)

// idTokenVerifier is the subset of the Firebase auth client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseVerifier accepts Firebase Authentication ID tokens. Roles come
// from custom claims ("role" or "roles").
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier opens the auth client of an initialized Firebase app.
func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

var _ TokenVerifier = (*FirebaseVerifier)(nil)

func (v *FirebaseVerifier) VerifyToken(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tok.UID == "" {
		return nil, ErrMissingSub
	}

	email, _ := tok.Claims["email"].(string)
	name, _ := tok.Claims["name"].(string)
	return &Principal{
		UserID: tok.UID,
		Email:  email,
		Name:   name,
		Roles:  rolesFromClaims(tok.Claims),
		Claims: tok.Claims,
	}, nil
}
