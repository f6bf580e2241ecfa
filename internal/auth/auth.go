// Package auth resolves the requesting user. Production mode verifies
// Google OAuth access tokens; development mode trusts a header, which
// matches how the frontend runs locally.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// User is the authenticated principal owning items and workflows.
type User struct {
	ID    string
	Email string
}

// ErrUnauthorized covers missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator resolves a request to a user.
type Authenticator interface {
	Authenticate(r *http.Request) (User, error)
}

// New picks the authenticator for the configured mode, "google" or
// "header".
func New(mode string) Authenticator {
	if mode == "google" {
		return &GoogleAuth{}
	}
	return &HeaderAuth{}
}

// HeaderAuth trusts the X-User-ID header and falls back to a shared
// default user, mirroring the single-user development setup.
type HeaderAuth struct{}

func (HeaderAuth) Authenticate(r *http.Request) (User, error) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		id = "default_user"
	}
	return User{ID: id}, nil
}

// GoogleAuth validates Bearer tokens against Google's tokeninfo
// endpoint and uses the Google account id as the user id.
type GoogleAuth struct{}

func (GoogleAuth) Authenticate(r *http.Request) (User, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return User{}, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	token := strings.TrimPrefix(header, "Bearer ")

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	svc, err := goauth2.NewService(r.Context(), option.WithTokenSource(ts))
	if err != nil {
		return User{}, fmt.Errorf("oauth2 service: %w", err)
	}
	info, err := svc.Tokeninfo().Do()
	if err != nil {
		return User{}, fmt.Errorf("%w: token verification failed: %v", ErrUnauthorized, err)
	}
	if info.UserId == "" {
		return User{}, fmt.Errorf("%w: token carries no user id", ErrUnauthorized)
	}
	return User{ID: info.UserId, Email: info.Email}, nil
}
