package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
	"github.com/dmitrijs2005/neurofit/internal/client/session"
	"github.com/dmitrijs2005/neurofit/internal/common"
	"github.com/dmitrijs2005/neurofit/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 4 << 20

	pathToken   = "/token/"
	pathRefresh = "/token/refresh/"
)

// Request is a single API call. Body is JSON-encoded once and replayed
// byte-for-byte if the call has to be retried after a renewal.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// NoAuth sends the request without a credential and never renews on 401.
	NoAuth bool
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ReauthFunc is called once each time the session is destroyed because the
// refresh credential was rejected. It plays the role of "redirect to login".
type ReauthFunc func(ctx context.Context, cause error)

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func WithReauthHandler(fn ReauthFunc) Option {
	return func(c *HTTPClient) { c.onReauth = fn }
}

type HTTPClient struct {
	baseURL  string
	http     *http.Client
	session  *session.Session
	log      logging.Logger
	onReauth ReauthFunc
	renewals singleflight.Group
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api". The session is owned by the caller and shared
// with whoever else needs to observe login state.
func New(baseURL string, sess *session.Session, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if sess == nil {
		return nil, errors.New("session is required")
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: sess,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Session() *session.Session {
	return c.session
}

// Do sends req with the current access credential. On a 401 it renews the
// credential once and replays req once. Statuses >= 400 are returned as
// *APIError.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*Response, error) {
	payload, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	resp, used, err := c.send(ctx, req, payload, c.session.Token())
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized || req.NoAuth || used == "" {
		return c.result(req, resp)
	}

	fresh, err := c.recoverAccess(ctx, used)
	if err != nil {
		return nil, err
	}

	c.log.Debug(ctx, "replaying request after renewal", "method", req.Method, "path", req.Path)
	resp, _, err = c.send(ctx, req, payload, fresh)
	if err != nil {
		return nil, err
	}
	return c.result(req, resp)
}

// recoverAccess returns a credential to replay with after a request that used
// `used` came back 401. If another request already renewed, the newer
// credential is reused without a second refresh call.
func (c *HTTPClient) recoverAccess(ctx context.Context, used string) (*oauth2.Token, error) {
	cur := c.session.Token()
	if cur == nil {
		// Another request's renewal already failed and destroyed the session.
		return nil, fmt.Errorf("%w: session already cleared", ErrRenewalFailed)
	}
	if cur.AccessToken != used {
		return cur, nil
	}

	v, err, shared := c.renewals.Do("renew", func() (any, error) {
		// Detached from the first caller so its cancellation does not fail the
		// others waiting on the same renewal. The HTTP timeout still applies.
		rctx := context.WithoutCancel(ctx)

		tok, err := c.Renew(rctx)
		if errors.Is(err, ErrRenewalFailed) {
			c.expire(rctx, err)
		}
		return tok, err
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug(ctx, "joined in-flight renewal")
	}
	return v.(*oauth2.Token), nil
}

// Renew exchanges the refresh credential for a new access credential and
// stores it in the session. Every failed exchange yields ErrRenewalFailed,
// wrapping the cause (ErrNetwork, ErrServer or the rejecting *APIError).
func (c *HTTPClient) Renew(ctx context.Context) (*oauth2.Token, error) {
	refresh := c.session.RefreshToken()
	if refresh == "" {
		return nil, fmt.Errorf("%w: no refresh credential", ErrRenewalFailed)
	}

	req := Request{Method: http.MethodPost, Path: pathRefresh, NoAuth: true}
	payload, err := encodeBody(models.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return nil, err
	}

	resp, _, err := c.send(ctx, req, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenewalFailed, err)
	}
	if _, err := c.result(req, resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenewalFailed, err)
	}

	var out models.RefreshResponse
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenewalFailed, err)
	}
	if out.Access == "" {
		return nil, fmt.Errorf("%w: empty access credential", ErrRenewalFailed)
	}

	tok, err := c.session.UpdateAccess(ctx, refresh, out.Access, out.Refresh)
	if errors.Is(err, session.ErrSessionChanged) {
		return nil, fmt.Errorf("%w: %w", ErrRenewalFailed, err)
	}
	if err != nil {
		return nil, fmt.Errorf("store renewed credential: %w", err)
	}

	c.log.Info(ctx, "access credential renewed", "rotated", out.Refresh != "", "user_id", c.session.UserID())
	return tok, nil
}

// expire destroys the session after a rejected renewal and tells the owner to
// authenticate again.
func (c *HTTPClient) expire(ctx context.Context, cause error) {
	if errors.Is(cause, session.ErrSessionChanged) {
		return
	}
	c.log.Warn(ctx, "session expired, credentials cleared", "error", cause)
	if err := c.session.Clear(ctx); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}
	if c.onReauth != nil {
		c.onReauth(ctx, cause)
	}
}

// send performs one HTTP round trip. It returns the access credential it
// attached, or "" when the request went out without one.
func (c *HTTPClient) send(ctx context.Context, req Request, payload []byte, tok *oauth2.Token) (*Response, string, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("build request %s %s: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)

	var used string
	if !req.NoAuth && tok != nil && tok.AccessToken != "" {
		tok.SetAuthHeader(httpReq)
		used = tok.AccessToken
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, used, fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, used, fmt.Errorf("%w: read %s %s: %w", ErrNetwork, req.Method, req.Path, err)
	}
	if len(data) > MaxResponseSize {
		return nil, used, fmt.Errorf("%w: %s %s: response body exceeds %d bytes", ErrServer, req.Method, req.Path, MaxResponseSize)
	}

	c.log.Debug(ctx, "request done",
		"method", req.Method, "path", req.Path, "status", httpResp.StatusCode,
		"elapsed", time.Since(start))

	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}, used, nil
}

func (c *HTTPClient) result(req Request, resp *Response) (*Response, error) {
	if resp.Status < http.StatusBadRequest {
		return resp, nil
	}
	return nil, &APIError{Method: req.Method, Path: req.Path, Status: resp.Status, Body: resp.Body}
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return b, nil
}
