package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

const (
	pathLogout   = "/logout/"
	pathRegister = "/users/register/"
)

// Login exchanges username and password for a token pair and starts a new
// session with it. A 401 here means bad credentials and is not renewed.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   pathToken,
		Body:   models.TokenRequest{Username: username, Password: password},
		NoAuth: true,
	})
	if err != nil {
		return nil, err
	}

	var pair models.TokenPair
	if err := resp.Decode(&pair); err != nil {
		return nil, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return nil, errors.New("login: server returned an incomplete token pair")
	}

	if err := c.session.Save(ctx, pair.Access, pair.Refresh); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Register creates an account. It does not log in.
func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) error {
	if req.Password2 == "" {
		req.Password2 = req.Password
	}
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: pathRegister, Body: req, NoAuth: true})
	return err
}

// Logout tells the server the session is over. It does not touch the local
// session; callers clear it regardless of the outcome.
func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: pathLogout})
	return err
}
