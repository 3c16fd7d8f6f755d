package interfaces

import (
	"context"

	"bakeshop/internal/domain"
)

// AuthStateHandler receives the new user id on sign-in and "" on sign-out.
type AuthStateHandler func(userID string)

// FederatedCredential is an identity already validated by an external
// provider; the transport-level token exchange happens before it gets here.
type FederatedCredential struct {
	Provider    string
	Subject     string
	Email       string
	DisplayName string
}

// AuthProvider is the external identity contract the session controller
// drives. All mutating calls may fail with an *auth.Error carrying a
// user-facing category.
type AuthProvider interface {
	// CurrentUserID returns "" when no session exists. Synchronous so the
	// initial state can be read before attaching the listener.
	CurrentUserID() string

	// OnAuthStateChanged registers a push listener for identity changes.
	OnAuthStateChanged(handler AuthStateHandler)

	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, fullName string) error
	SignInWithFederated(ctx context.Context, cred FederatedCredential) error
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error

	// Profile loads the account metadata written at registration.
	Profile(ctx context.Context, userID string) (*domain.UserProfile, error)
}
