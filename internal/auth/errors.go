package auth

import (
	"errors"
	"strings"
)

// Errors shown to users verbatim. Raw provider errors never reach a page.
var (
	ErrMissingCredentials = errors.New("Please enter your email and password.")
	ErrWeakPassword       = errors.New("Password must be at least 6 characters.")
	ErrInvalidLogin       = errors.New("Incorrect email or password.")
	ErrEmailNotConfirmed  = errors.New("Please confirm your email address before signing in.")
	ErrEmailTaken         = errors.New("An account with this email already exists.")
	ErrRateLimited        = errors.New("Too many attempts. Please wait a moment and try again.")
	ErrNotSignedIn        = errors.New("You need to sign in to continue.")
	ErrUnknownProvider    = errors.New("Sign-in with that provider is not supported.")
	ErrAuthUnavailable    = errors.New("Something went wrong. Please try again.")
)

// friendlyError maps the provider's error text onto one of the messages
// above. Matching on substrings is deliberate: the provider wraps the same
// message in varying envelopes.
func friendlyError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid login credentials"):
		return ErrInvalidLogin
	case strings.Contains(msg, "email not confirmed"):
		return ErrEmailNotConfirmed
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "already exists"):
		return ErrEmailTaken
	case strings.Contains(msg, "at least 6 characters"), strings.Contains(msg, "weak password"):
		return ErrWeakPassword
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return ErrRateLimited
	default:
		return ErrAuthUnavailable
	}
}
