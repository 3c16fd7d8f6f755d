// Package auth implements the identity provider backing the session
// controller: a password store with bcrypt hashes, federated sign-in,
// password reset and push-style state-change notifications.
package auth

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/domain"
	"bakeshop/internal/interfaces"
)

// UserRecord is the stored account row.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	Verified     bool
	Provider     string // "" for password accounts
	CreatedAt    string
}

// UserStore persists accounts. Lookups return (nil, nil) when absent.
type UserStore interface {
	Create(ctx context.Context, user UserRecord) error
	ByEmail(ctx context.Context, email string) (*UserRecord, error)
	ByID(ctx context.Context, id string) (*UserRecord, error)
	SetPassword(ctx context.Context, id, hash string) error
	SetVerified(ctx context.Context, id string) error
}

// Limiter throttles sign-in attempts per email.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// TokenStore holds single-use password-reset tokens.
type TokenStore interface {
	Put(ctx context.Context, token, userID string) error
	Consume(ctx context.Context, token string) (string, error)
}

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Provider struct {
	store           UserStore
	limiter         Limiter
	tokens          TokenStore
	logger          logger.Logger
	requireVerified bool

	mu       sync.Mutex
	current  string
	handlers []interfaces.AuthStateHandler
}

func NewProvider(store UserStore, limiter Limiter, tokens TokenStore, lgr logger.Logger, requireVerified bool) *Provider {
	return &Provider{
		store:           store,
		limiter:         limiter,
		tokens:          tokens,
		logger:          lgr,
		requireVerified: requireVerified,
	}
}

// CurrentUserID returns the signed-in identity, "" when signed out.
func (p *Provider) CurrentUserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// OnAuthStateChanged registers a push listener; it fires on every sign-in
// and sign-out after registration, not on attach.
func (p *Provider) OnAuthStateChanged(handler interfaces.AuthStateHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) error {
	if !emailPattern.MatchString(email) {
		return newError("auth/invalid-email", CategoryMalformedEmail, "email is badly formatted")
	}

	allowed, err := p.limiter.Allow(ctx, email)
	if err != nil {
		return newError("auth/limiter-unavailable", CategoryNetwork, err.Error())
	}
	if !allowed {
		return newError("auth/too-many-requests", CategoryRateLimited, "too many sign-in attempts")
	}

	user, err := p.store.ByEmail(ctx, email)
	if err != nil {
		return newError("auth/store-unavailable", CategoryNetwork, err.Error())
	}
	if user == nil {
		return newError("auth/user-not-found", CategoryInvalidCredentials, "no user for email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return newError("auth/wrong-password", CategoryInvalidCredentials, "password mismatch")
	}

	if err := p.limiter.Reset(ctx, email); err != nil {
		p.logger.Error("limiter_reset_failed", "Attempt window not cleared", nil, err)
	}

	// The session starts even when verification is still pending, matching
	// the sign-in flow that keeps the user in but gates the workspace
	// behind a verification notice.
	p.setCurrent(user.ID)

	if p.requireVerified && !user.Verified {
		return newError("auth/email-not-verified", CategoryNotVerified, "email not verified")
	}

	return nil
}

func (p *Provider) SignUp(ctx context.Context, email, password, fullName string) error {
	if !emailPattern.MatchString(email) {
		return newError("auth/invalid-email", CategoryMalformedEmail, "email is badly formatted")
	}
	if len(password) < minPasswordLength {
		return newError("auth/weak-password", CategoryWeakPassword, "password too short")
	}

	existing, err := p.store.ByEmail(ctx, email)
	if err != nil {
		return newError("auth/store-unavailable", CategoryNetwork, err.Error())
	}
	if existing != nil {
		return newError("auth/email-already-in-use", CategoryEmailInUse, "email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := UserRecord{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         domain.RoleUser,
		Verified:     !p.requireVerified,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := p.store.Create(ctx, user); err != nil {
		return newError("auth/store-unavailable", CategoryNetwork, err.Error())
	}

	p.logger.Info("user_registered", "Account created", map[string]interface{}{
		"user_id":               user.ID,
		"verification_required": p.requireVerified,
	})

	p.setCurrent(user.ID)
	return nil
}

// SignInWithFederated accepts an identity already validated by an external
// provider, creating the local account on first sight. Federated emails
// arrive pre-verified.
func (p *Provider) SignInWithFederated(ctx context.Context, cred interfaces.FederatedCredential) error {
	if cred.Subject == "" || cred.Email == "" {
		return newError("auth/invalid-credential", CategoryInvalidCredentials, "incomplete federated credential")
	}

	user, err := p.store.ByEmail(ctx, cred.Email)
	if err != nil {
		return newError("auth/store-unavailable", CategoryNetwork, err.Error())
	}

	if user == nil {
		fullName := cred.DisplayName
		if fullName == "" {
			fullName = "User"
		}

		user = &UserRecord{
			ID:        uuid.NewString(),
			Email:     cred.Email,
			FullName:  fullName,
			Role:      domain.RoleUser,
			Verified:  true,
			Provider:  cred.Provider,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := p.store.Create(ctx, *user); err != nil {
			return newError("auth/store-unavailable", CategoryNetwork, err.Error())
		}

		p.logger.Info("user_registered", "Account created from federated identity", map[string]interface{}{
			"user_id":  user.ID,
			"provider": cred.Provider,
		})
	}

	p.setCurrent(user.ID)
	return nil
}

// SendPasswordReset issues a single-use token for the account. Without a
// mail sender in this deployment, delivery is the operator's problem; the
// token is only logged as issued, never with its value.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	user, err := p.store.ByEmail(ctx, email)
	if err != nil {
		return newError("auth/store-unavailable", CategoryNetwork, err.Error())
	}
	if user == nil {
		return newError("auth/user-not-found", CategoryInvalidCredentials, "no user for email")
	}

	token := uuid.NewString()
	if err := p.tokens.Put(ctx, token, user.ID); err != nil {
		return newError("auth/token-store-unavailable", CategoryNetwork, err.Error())
	}

	p.logger.Info("password_reset_issued", "Reset token stored", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// ConfirmPasswordReset redeems a token and installs the new password.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return newError("auth/weak-password", CategoryWeakPassword, "password too short")
	}

	userID, err := p.tokens.Consume(ctx, token)
	if err != nil {
		return newError("auth/invalid-reset-token", CategoryInvalidCredentials, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := p.store.SetPassword(ctx, userID, string(hash)); err != nil {
		return newError("auth/store-unavailable", CategoryNetwork, err.Error())
	}

	p.logger.Info("password_reset_completed", "Password replaced", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// MarkVerified flips the verification flag once the address is confirmed.
func (p *Provider) MarkVerified(ctx context.Context, userID string) error {
	return p.store.SetVerified(ctx, userID)
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.setCurrent("")
	return nil
}

// Profile loads the account metadata for the session controller.
func (p *Provider) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := p.store.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("no profile for user %s", userID)
	}

	return &domain.UserProfile{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Role:      user.Role,
	}, nil
}

// setCurrent swaps the session identity and notifies listeners outside the
// lock. Re-signing the same identity in is not a transition.
func (p *Provider) setCurrent(userID string) {
	p.mu.Lock()
	if p.current == userID {
		p.mu.Unlock()
		return
	}
	p.current = userID
	handlers := make([]interfaces.AuthStateHandler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	for _, handler := range handlers {
		handler(userID)
	}
}
