package auth

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeOwnErrors(t *testing.T) {
	err := newError("auth/wrong-password", CategoryInvalidCredentials, "password mismatch")
	if got := Categorize(err); got != CategoryInvalidCredentials {
		t.Errorf("Categorize = %q, want invalid_credentials", got)
	}

	// Category survives wrapping.
	wrapped := fmt.Errorf("sign-in failed: %w", err)
	if got := Categorize(wrapped); got != CategoryInvalidCredentials {
		t.Errorf("Categorize(wrapped) = %q, want invalid_credentials", got)
	}
}

func TestCategorizeForeignErrors(t *testing.T) {
	tests := []struct {
		msg  string
		want Category
	}{
		{"Too many requests from this device", CategoryRateLimited},
		{"The email address is already in use by another account", CategoryEmailInUse},
		{"The email address is badly formatted", CategoryMalformedEmail},
		{"Password should be at least 6 characters", CategoryWeakPassword},
		{"Please verify your email before signing in", CategoryNotVerified},
		{"The password is invalid", CategoryInvalidCredentials},
		{"There is no user record corresponding to this identifier", CategoryInvalidCredentials},
		{"A network error has occurred", CategoryNetwork},
		{"connection refused", CategoryNetwork},
		{"something inscrutable", CategoryUnknown},
	}

	for _, tt := range tests {
		if got := Categorize(errors.New(tt.msg)); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestCategoryMessages(t *testing.T) {
	categories := []Category{
		CategoryInvalidCredentials, CategoryMalformedEmail, CategoryWeakPassword,
		CategoryEmailInUse, CategoryRateLimited, CategoryNetwork,
		CategoryNotVerified, CategoryUnknown,
	}
	seen := make(map[string]Category)
	for _, c := range categories {
		msg := c.Message()
		if msg == "" {
			t.Errorf("category %q has no message", c)
		}
		if prior, dup := seen[msg]; dup {
			t.Errorf("categories %q and %q share message %q", prior, c, msg)
		}
		seen[msg] = c
	}
}

func TestErrorString(t *testing.T) {
	err := newError("auth/user-not-found", CategoryInvalidCredentials, "no user for email")
	if err.Error() != "auth/user-not-found: no user for email" {
		t.Errorf("unexpected error string: %q", err.Error())
	}

	bare := newError("auth/user-not-found", CategoryInvalidCredentials, "")
	if bare.Error() != "auth/user-not-found" {
		t.Errorf("unexpected bare error string: %q", bare.Error())
	}
}
