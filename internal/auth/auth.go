// Package auth wraps the hosted identity provider. Handlers never see the
// provider's client or raw errors; they get sessions, users and messages fit
// for display.
package auth

import (
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// Session is what a successful sign-in yields. AccessToken rides in the
// session cookie; RefreshToken is kept alongside for renewal.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         User
}

type User struct {
	ID    string
	Email string
}

// baseAPI are the unauthenticated provider calls the service needs.
type baseAPI interface {
	SignInWithEmailPassword(email, password string) (*types.TokenResponse, error)
	Signup(req types.SignupRequest) (*types.SignupResponse, error)
	Recover(req types.RecoverRequest) error
	RefreshToken(refreshToken string) (*types.TokenResponse, error)
	Authorize(req types.AuthorizeRequest) (*types.AuthorizeResponse, error)
}

// tokenAPI are the calls made on behalf of a signed-in user.
type tokenAPI interface {
	GetUser() (*types.UserResponse, error)
	UpdateUser(req types.UpdateUserRequest) (*types.UpdateUserResponse, error)
	Logout() error
}

type Service struct {
	base   baseAPI
	scoped func(token string) tokenAPI
}

// New connects to the identity provider. projectRef and apiKey come from
// config; gotrueURL overrides the derived endpoint for self-hosted setups.
func New(projectRef, apiKey, gotrueURL string) *Service {
	client := gotrue.New(projectRef, apiKey)
	if gotrueURL != "" {
		client = client.WithCustomGoTrueURL(gotrueURL)
	}
	return &Service{
		base:   client,
		scoped: func(token string) tokenAPI { return client.WithToken(token) },
	}
}

func (s *Service) SignIn(email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}

	resp, err := s.base.SignInWithEmailPassword(email, password)
	if err != nil {
		return Session{}, friendlyError(err)
	}
	return sessionFromToken(resp), nil
}

func (s *Service) SignUp(email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}
	if len(password) < 6 {
		return User{}, ErrWeakPassword
	}

	resp, err := s.base.Signup(types.SignupRequest{Email: email, Password: password})
	if err != nil {
		return User{}, friendlyError(err)
	}
	return User{ID: resp.ID.String(), Email: resp.Email}, nil
}

func (s *Service) SignOut(token string) error {
	if token == "" {
		return nil
	}
	if err := s.scoped(token).Logout(); err != nil {
		return friendlyError(err)
	}
	return nil
}

func (s *Service) SendPasswordReset(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingCredentials
	}
	if err := s.base.Recover(types.RecoverRequest{Email: email}); err != nil {
		return friendlyError(err)
	}
	return nil
}

// UpdatePassword sets a new password for the user behind token. Used by the
// recovery flow after the emailed link signs the user in.
func (s *Service) UpdatePassword(token, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}
	_, err := s.scoped(token).UpdateUser(types.UpdateUserRequest{Password: &newPassword})
	if err != nil {
		return friendlyError(err)
	}
	return nil
}

// UserFromToken validates an access token against the provider and returns
// the user it belongs to.
func (s *Service) UserFromToken(token string) (User, error) {
	if token == "" {
		return User{}, ErrNotSignedIn
	}
	resp, err := s.scoped(token).GetUser()
	if err != nil {
		return User{}, ErrNotSignedIn
	}
	return User{ID: resp.ID.String(), Email: resp.Email}, nil
}

// Refresh exchanges a refresh token for a new session.
func (s *Service) Refresh(refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, ErrNotSignedIn
	}
	resp, err := s.base.RefreshToken(refreshToken)
	if err != nil {
		return Session{}, ErrNotSignedIn
	}
	return sessionFromToken(resp), nil
}

// AuthorizeURL starts an OAuth flow with an external provider and returns
// the URL to redirect the browser to. The post-login redirect target is part
// of the provider's project configuration, not the request.
func (s *Service) AuthorizeURL(provider string) (string, error) {
	var p types.Provider
	switch provider {
	case "google":
		p = types.ProviderGoogle
	case "github":
		p = types.ProviderGitHub
	default:
		return "", ErrUnknownProvider
	}

	resp, err := s.base.Authorize(types.AuthorizeRequest{
		Provider: p,
		FlowType: types.FlowImplicit,
	})
	if err != nil {
		return "", friendlyError(err)
	}
	return resp.AuthorizationURL, nil
}

func sessionFromToken(resp *types.TokenResponse) Session {
	return Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         User{ID: resp.User.ID.String(), Email: resp.User.Email},
	}
}
