// Package services contains application services for the NeuroFit client.
// This file defines the authentication service: login, registration, logout,
// and restoring a persisted session on startup.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/neurofit/internal/client/client"
	"github.com/dmitrijs2005/neurofit/internal/client/models"
	"github.com/dmitrijs2005/neurofit/internal/client/session"
	"github.com/dmitrijs2005/neurofit/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: obtain a token pair, persist it, load and remember the profile.
//   - Register: create the account, then log in with the same credentials.
//   - Logout: tell the server (best effort) and always drop the local session.
//   - Restore: revalidate a persisted session by fetching the profile.
//   - CurrentUser / IsAuthenticated: report the in-memory state.
//   - Forget: drop the cached profile after the session was destroyed elsewhere.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (*models.User, error)
	CurrentUser() *models.User
	IsAuthenticated() bool
	Forget()
}

type authService struct {
	client  client.Client
	session *session.Session
	log     logging.Logger

	mu   sync.RWMutex
	user *models.User
}

// NewAuthService constructs an AuthService bound to the given API client and
// the session it renews.
func NewAuthService(c client.Client, sess *session.Session, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: c, session: sess, log: log}
}

func (a *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if _, err := a.client.Login(ctx, username, password); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	u, err := a.loadProfile(ctx)
	if err != nil {
		return nil, err
	}
	a.log.Info(ctx, "logged in", "user_id", u.ID)
	return u, nil
}

func (a *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	req := models.RegisterRequest{Username: username, Email: email, Password: password, Password2: password}
	if err := a.client.Register(ctx, req); err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return a.Login(ctx, username, password)
}

// Logout never fails because of the server: the local session is cleared
// whatever the logout call returns. Only a local store failure is reported.
func (a *authService) Logout(ctx context.Context) error {
	if a.session.Authenticated() {
		if err := a.client.Logout(ctx); err != nil {
			a.log.Warn(ctx, "server logout failed", "error", err)
		}
	}

	a.Forget()
	if err := a.session.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Restore returns (nil, nil) when nothing is persisted. A session the server
// no longer accepts, or one whose renewal failed, is cleared. Network and
// server failures of the profile call itself leave it in place so the next
// start can try again.
func (a *authService) Restore(ctx context.Context) (*models.User, error) {
	if err := a.session.Load(ctx); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !a.session.Authenticated() {
		return nil, nil
	}

	u, err := a.loadProfile(ctx)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, client.ErrRenewalFailed) && (errors.Is(err, client.ErrNetwork) || errors.Is(err, client.ErrServer)) {
		return nil, err
	}

	a.log.Warn(ctx, "stored session rejected, clearing", "error", err)
	a.Forget()
	if cerr := a.session.Clear(ctx); cerr != nil {
		a.log.Error(ctx, "failed to clear session", "error", cerr)
	}
	return nil, err
}

func (a *authService) loadProfile(ctx context.Context) (*models.User, error) {
	u, err := a.client.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if err := a.session.SetUserID(ctx, strconv.Itoa(u.ID)); err != nil {
		return nil, fmt.Errorf("save user id: %w", err)
	}

	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
	return u, nil
}

func (a *authService) CurrentUser() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

func (a *authService) IsAuthenticated() bool {
	return a.session.Authenticated()
}

func (a *authService) Forget() {
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()
}
