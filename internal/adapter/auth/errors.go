package auth

import (
	"errors"
	"strings"
)

// Category is the user-facing classification of an authentication failure.
// Presentation maps a category to one message; the provider-specific detail
// never reaches the user.
type Category string

const (
	CategoryInvalidCredentials Category = "invalid_credentials"
	CategoryMalformedEmail     Category = "malformed_email"
	CategoryWeakPassword       Category = "weak_password"
	CategoryEmailInUse         Category = "email_in_use"
	CategoryRateLimited        Category = "rate_limited"
	CategoryNetwork            Category = "network"
	CategoryNotVerified        Category = "email_not_verified"
	CategoryUnknown            Category = "unknown"
)

// Message is the inline text presentation renders for the category.
func (c Category) Message() string {
	switch c {
	case CategoryInvalidCredentials:
		return "Email or password is incorrect."
	case CategoryMalformedEmail:
		return "That email address doesn't look right."
	case CategoryWeakPassword:
		return "Password must be at least 8 characters."
	case CategoryEmailInUse:
		return "An account with this email already exists."
	case CategoryRateLimited:
		return "Too many attempts. Please wait and try again."
	case CategoryNetwork:
		return "Connection problem. Check your network and try again."
	case CategoryNotVerified:
		return "Please verify your email address before continuing."
	default:
		return "Something went wrong. Please try again."
	}
}

// Error is an authentication failure with a stable code and a user-facing
// category.
type Error struct {
	Code     string
	Category Category
	Detail   string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

func newError(code string, category Category, detail string) *Error {
	return &Error{Code: code, Category: category, Detail: detail}
}

// Categorize maps any error to a user-facing category. Errors from this
// provider carry their category; foreign provider errors fall back to a
// pattern match over the message text.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Category
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "too many"):
		return CategoryRateLimited
	case strings.Contains(msg, "already in use"), strings.Contains(msg, "already exists"):
		return CategoryEmailInUse
	case strings.Contains(msg, "badly formatted"), strings.Contains(msg, "invalid email"):
		return CategoryMalformedEmail
	case strings.Contains(msg, "weak"), strings.Contains(msg, "at least"):
		return CategoryWeakPassword
	case strings.Contains(msg, "not verified"), strings.Contains(msg, "verify your email"):
		return CategoryNotVerified
	case strings.Contains(msg, "password"), strings.Contains(msg, "no user"), strings.Contains(msg, "user not found"):
		return CategoryInvalidCredentials
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"):
		return CategoryNetwork
	default:
		return CategoryUnknown
	}
}
