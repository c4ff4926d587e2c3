// Package session holds per-session client state: the bearer credential, the
// current user snapshot and the anti-forgery token. The state is an explicit
// object injected into the HTTP client rather than ambient globals.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Hassanein20/Senior-Project-dev/internal/model"
)

// TokenStore is a single-value store for the current CSRF token. The server
// is authoritative: any fresh token overwrites the stored one unconditionally.
type TokenStore struct {
	mu    sync.Mutex
	token string
}

// Token returns the stored token, or the empty string when none is cached.
func (s *TokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken overwrites the stored token.
func (s *TokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear drops the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Session is the authenticated state for one backend session. It is cleared
// as a unit on logout or when the backend answers 401.
type Session struct {
	mu     sync.Mutex
	bearer string
	user   model.User
	hasUsr bool
	csrf   TokenStore

	now func() time.Time
}

// New returns an empty session.
func New() *Session {
	return &Session{now: time.Now}
}

// CSRF exposes the session's token store.
func (s *Session) CSRF() *TokenStore { return &s.csrf }

// SetCredentials installs the bearer credential and user snapshot delivered
// by a successful login or registration.
func (s *Session) SetCredentials(user model.User, bearer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bearer = bearer
	s.user = user
	s.hasUsr = true
}

// SetUser refreshes the cached user snapshot without touching the credential.
func (s *Session) SetUser(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.hasUsr = true
}

// Bearer returns the current bearer credential, empty when unauthenticated.
func (s *Session) Bearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bearer
}

// User returns the cached user snapshot.
func (s *Session) User() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.hasUsr
}

// Authenticated reports whether a bearer credential is present.
func (s *Session) Authenticated() bool {
	return s.Bearer() != ""
}

// Expired reports whether the bearer credential carries an exp claim in the
// past. The signature is not verified here; validity is the server's call and
// the client only avoids sending a credential it already knows is dead.
// Unparseable tokens count as expired, tokens without an exp claim do not.
func (s *Session) Expired() bool {
	bearer := s.Bearer()
	if bearer == "" {
		return false
	}
	token, _, err := jwt.NewParser().ParseUnverified(bearer, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return s.now().After(exp.Time)
}

// Reset clears the credential, the user snapshot and the CSRF token.
func (s *Session) Reset() {
	s.mu.Lock()
	s.bearer = ""
	s.user = model.User{}
	s.hasUsr = false
	s.mu.Unlock()
	s.csrf.Clear()
}
