package session

import (
	"context"
	"sync"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/domain"
	"bakeshop/internal/interfaces"
)

// Controller owns authentication state transitions and wires the two
// repositories to the signed-in identity. It is the only component that
// starts or stops subscriptions.
type Controller struct {
	auth   interfaces.AuthProvider
	orders interfaces.OrderCollection
	menu   interfaces.MenuCollection
	logger logger.Logger

	mu      sync.Mutex
	userID  string
	profile *domain.UserProfile
}

func NewController(auth interfaces.AuthProvider, orders interfaces.OrderCollection, menu interfaces.MenuCollection, lgr logger.Logger) *Controller {
	return &Controller{
		auth:   auth,
		orders: orders,
		menu:   menu,
		logger: lgr,
	}
}

// Start reads the provider's current state synchronously before attaching the
// change listener, so an existing session attaches without passing through a
// signed-out state first.
func (c *Controller) Start(ctx context.Context) {
	if userID := c.auth.CurrentUserID(); userID != "" {
		c.handleSignIn(ctx, userID)
	}

	c.auth.OnAuthStateChanged(func(userID string) {
		if userID != "" {
			c.handleSignIn(ctx, userID)
		} else {
			c.handleSignOut()
		}
	})
}

// UserID returns the signed-in identity, or "" when signed out.
func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Profile returns the signed-in user's profile, or nil before the fetch
// completes or when signed out.
func (c *Controller) Profile() *domain.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *Controller) handleSignIn(ctx context.Context, userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()

	c.logger.Info("session_signed_in", "Attaching repositories", map[string]interface{}{
		"user_id": userID,
	})

	profile, err := c.auth.Profile(ctx, userID)
	if err != nil {
		// Keep the session alive; the profile is metadata, not a gate.
		c.logger.Error("profile_fetch_failed", "Could not load user profile", nil, err)
	} else {
		c.mu.Lock()
		c.profile = profile
		c.mu.Unlock()
	}

	if err := c.orders.Subscribe(ctx, userID); err != nil {
		c.logger.Error("orders_subscribe_failed", "Order subscription did not start", nil, err)
	}
	if err := c.menu.Subscribe(ctx, userID); err != nil {
		c.logger.Error("menu_subscribe_failed", "Menu subscription did not start", nil, err)
	}
}

func (c *Controller) handleSignOut() {
	c.logger.Info("session_signed_out", "Detaching repositories", nil)

	c.orders.Unsubscribe()
	c.menu.Unsubscribe()
	c.orders.Clear()
	c.menu.Clear()

	c.mu.Lock()
	c.userID = ""
	c.profile = nil
	c.mu.Unlock()
}
