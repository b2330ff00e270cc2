package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ErrSessionChanged is returned by UpdateAccess when the session was cleared
// or replaced while a renewal was in flight.
var ErrSessionChanged = errors.New("session changed during renewal")

// Session is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	store Store
	creds Credentials
}

func New(store Store) *Session {
	return &Session{store: store}
}

// Load replaces the in-memory state with what the store holds.
func (s *Session) Load(ctx context.Context) error {
	c, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.creds = c
	s.mu.Unlock()
	return nil
}

// Token returns a copy of the current credentials, or nil when there is no
// access credential. Expiry is taken from the access token's exp claim when
// it is a JWT. It is informational only.
func (s *Session) Token() *oauth2.Token {
	s.mu.RLock()
	c := s.creds
	s.mu.RUnlock()

	if c.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       accessExpiry(c.AccessToken),
	}
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.RefreshToken
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.UserID
}

// Authenticated reports whether an access credential is held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken != ""
}

// Save starts a new session. Any previous user id is dropped.
func (s *Session) Save(ctx context.Context, access, refresh string) error {
	return s.write(ctx, func(c *Credentials) {
		*c = Credentials{AccessToken: access, RefreshToken: refresh}
	})
}

func (s *Session) SetUserID(ctx context.Context, userID string) error {
	return s.write(ctx, func(c *Credentials) {
		c.UserID = userID
	})
}

// UpdateAccess installs an access credential obtained by renewing with
// renewedWith. An empty refresh keeps the current refresh credential. If the
// session no longer holds renewedWith, nothing changes and ErrSessionChanged
// is returned.
func (s *Session) UpdateAccess(ctx context.Context, renewedWith, access, refresh string) (*oauth2.Token, error) {
	var changed bool
	err := s.write(ctx, func(c *Credentials) {
		if renewedWith == "" || c.RefreshToken != renewedWith {
			changed = true
			return
		}
		c.AccessToken = access
		if refresh != "" {
			c.RefreshToken = refresh
		}
	})
	if err != nil {
		return nil, err
	}
	if changed {
		return nil, ErrSessionChanged
	}
	return s.Token(), nil
}

// Clear destroys the session. The in-memory copy is dropped even when the
// store fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return s.store.Clear(ctx)
}

// write applies fn to a copy and persists it before swapping it in.
func (s *Session) write(ctx context.Context, fn func(c *Credentials)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.creds
	fn(&next)
	if next == s.creds {
		return nil
	}
	if err := s.store.Save(ctx, next); err != nil {
		return err
	}
	s.creds = next
	return nil
}

func accessExpiry(access string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
