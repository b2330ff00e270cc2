package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
	"github.com/dmitrijs2005/neurofit/internal/client/session"
	"github.com/dmitrijs2005/neurofit/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// fakeAPI accepts exactly one access token at a time on /api/users/profile/
// and hands out `next` from /api/token/refresh/.
type fakeAPI struct {
	mu            sync.Mutex
	valid         string
	next          string
	rotateTo      string
	refreshStatus int
	refreshDelay  time.Duration
	onRefresh     func()
	refuseAll     bool

	profileCalls atomic.Int32
	refreshCalls atomic.Int32
	refreshBody  models.RefreshRequest
	authHeaders  [][]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/users/profile/":
		f.profileCalls.Add(1)
		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, r.Header.Values(common.AuthorizationHeaderName))
		ok := !f.refuseAll && r.Header.Get(common.AuthorizationHeaderName) == "Bearer "+f.valid
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"username":"alice","email":"a@example.com","weight":"72.50"}`))

	case "/api/token/refresh/":
		f.refreshCalls.Add(1)
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		if f.onRefresh != nil {
			f.onRefresh()
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&f.refreshBody)
		if f.refreshStatus != 0 {
			w.WriteHeader(f.refreshStatus)
			_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
			return
		}
		f.valid = f.next
		_ = json.NewEncoder(w).Encode(models.RefreshResponse{Access: f.next, Refresh: f.rotateTo})

	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*HTTPClient, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sess := session.New(session.NewMemoryStore())
	c, err := New(srv.URL+"/api", sess, opts...)
	require.NoError(t, err)
	return c, sess
}

func TestNew_Validation(t *testing.T) {
	sess := session.New(session.NewMemoryStore())

	_, err := New("ftp://example.com", sess)
	assert.Error(t, err)

	_, err = New("http://example.com/api", nil)
	assert.Error(t, err)

	c, err := New("http://example.com/api/", sess)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", c.baseURL)
	assert.Same(t, sess, c.Session())
}

func TestDo_AttachesBearerOnce(t *testing.T) {
	var gotAuth []string
	var gotID string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Values(common.AuthorizationHeaderName)
		gotID = r.Header.Get(common.RequestIDHeaderName)
		_, _ = w.Write([]byte(`{}`))
	})
	c, sess := newTestClient(t, h)
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/users/profile/"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer A1"}, gotAuth)
	_, err = uuid.Parse(gotID)
	assert.NoError(t, err)
}

func TestDo_NoSessionSendsNoCredential(t *testing.T) {
	calls := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Empty(t, r.Header.Values(common.AuthorizationHeaderName))
		w.WriteHeader(http.StatusUnauthorized)
	})
	c, _ := newTestClient(t, h)

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users/profile/"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, calls)
}

func TestDo_RenewsOnceAndReplays(t *testing.T) {
	api := &fakeAPI{valid: "A2", next: "A2"}
	c, sess := newTestClient(t, api)
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	u, err := c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	require.NotNil(t, u.Weight)
	assert.InDelta(t, 72.5, float64(*u.Weight), 0.001)

	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.EqualValues(t, 2, api.profileCalls.Load())
	assert.Equal(t, "R1", api.refreshBody.RefreshToken)
	assert.Equal(t, [][]string{{"Bearer A1"}, {"Bearer A2"}}, api.authHeaders)

	assert.Equal(t, "A2", sess.Token().AccessToken)
	assert.Equal(t, "R1", sess.RefreshToken())
}

func TestDo_StoresRotatedRefresh(t *testing.T) {
	api := &fakeAPI{valid: "A2", next: "A2", rotateTo: "R2"}
	c, sess := newTestClient(t, api)
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	_, err := c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "R2", sess.RefreshToken())
}

func TestDo_RenewalRejectedClearsSession(t *testing.T) {
	api := &fakeAPI{valid: "A2", refreshStatus: http.StatusUnauthorized}

	var reauths atomic.Int32
	c, sess := newTestClient(t, api, WithReauthHandler(func(ctx context.Context, cause error) {
		reauths.Add(1)
		assert.ErrorIs(t, cause, ErrRenewalFailed)
	}))
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))
	require.NoError(t, sess.SetUserID(ctx, "7"))

	_, err := c.GetProfile(ctx)
	require.ErrorIs(t, err, ErrRenewalFailed)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))

	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.RefreshToken())
	assert.Empty(t, sess.UserID())
	assert.EqualValues(t, 1, reauths.Load())
	assert.EqualValues(t, 1, api.profileCalls.Load(), "original request is not replayed")
}

func TestDo_ReplayUnauthorizedIsNotRenewedAgain(t *testing.T) {
	// Refresh succeeds but the server still refuses the new credential.
	api := &fakeAPI{next: "A2", refuseAll: true}
	c, sess := newTestClient(t, api)
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	_, err := c.GetProfile(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrRenewalFailed)

	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.EqualValues(t, 2, api.profileCalls.Load())
	assert.True(t, sess.Authenticated())
}

func TestDo_ConcurrentUnauthorizedShareOneRenewal(t *testing.T) {
	api := &fakeAPI{valid: "A2", next: "A2", refreshDelay: 50 * time.Millisecond}
	c, sess := newTestClient(t, api)
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetProfile(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.Equal(t, "A2", sess.Token().AccessToken)
}

func TestDo_NetworkErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("connection refused")
	})
	sess := session.New(session.NewMemoryStore())
	c, err := New("http://example.invalid/api", sess, WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	_, err = c.GetProfile(ctx)
	require.ErrorIs(t, err, ErrNetwork)
	assert.EqualValues(t, 1, calls.Load())
	assert.True(t, sess.Authenticated())
}

func TestDo_RenewalServerErrorEndsSession(t *testing.T) {
	api := &fakeAPI{valid: "A2", refreshStatus: http.StatusServiceUnavailable}

	var reauths atomic.Int32
	c, sess := newTestClient(t, api, WithReauthHandler(func(context.Context, error) { reauths.Add(1) }))
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	_, err := c.GetProfile(ctx)
	require.ErrorIs(t, err, ErrRenewalFailed)
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.RefreshToken())
	assert.EqualValues(t, 1, reauths.Load())

	// Later calls go out without a credential and do not renew again.
	for i := 0; i < 2; i++ {
		_, err = c.GetProfile(ctx)
		require.ErrorIs(t, err, ErrUnauthorized)
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.EqualValues(t, 1, reauths.Load())
}

func TestDo_RenewalNetworkErrorEndsSession(t *testing.T) {
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path == "/api/token/refresh/" {
			return nil, errors.New("connection reset by peer")
		}
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusUnauthorized)
		return rec.Result(), nil
	})
	sess := session.New(session.NewMemoryStore())

	var cause error
	c, err := New("http://example.invalid/api", sess,
		WithHTTPClient(&http.Client{Transport: rt}),
		WithReauthHandler(func(_ context.Context, err error) { cause = err }))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	_, err = c.GetProfile(ctx)
	require.ErrorIs(t, err, ErrRenewalFailed)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, sess.Authenticated())
	assert.ErrorIs(t, cause, ErrNetwork)
}

func TestDo_LateUnauthorizedAfterSessionDestroyed(t *testing.T) {
	api := &fakeAPI{valid: "A2", refreshStatus: http.StatusUnauthorized}

	var reauths atomic.Int32
	c, sess := newTestClient(t, api, WithReauthHandler(func(context.Context, error) { reauths.Add(1) }))
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	_, err := c.GetProfile(ctx)
	require.ErrorIs(t, err, ErrRenewalFailed)

	// A request sent with A1 before the session was destroyed gets its 401 now.
	_, err = c.recoverAccess(ctx, "A1")
	require.ErrorIs(t, err, ErrRenewalFailed)

	assert.EqualValues(t, 1, reauths.Load())
	assert.EqualValues(t, 1, api.refreshCalls.Load())
}

func TestDo_MissingRefreshCredentialFails(t *testing.T) {
	api := &fakeAPI{valid: "A2", next: "A2"}

	reauthed := false
	c, sess := newTestClient(t, api, WithReauthHandler(func(context.Context, error) { reauthed = true }))
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", ""))

	_, err := c.GetProfile(ctx)
	require.ErrorIs(t, err, ErrRenewalFailed)
	assert.EqualValues(t, 0, api.refreshCalls.Load())
	assert.False(t, sess.Authenticated())
	assert.True(t, reauthed)
}

func TestDo_ReusesCredentialRenewedElsewhere(t *testing.T) {
	var sess *session.Session
	api := &fakeAPI{valid: "A2", next: "A3"}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A concurrent renewal lands while this request is in flight.
		if r.URL.Path == "/api/users/profile/" && r.Header.Get(common.AuthorizationHeaderName) == "Bearer A1" {
			assert.NoError(t, sess.Save(r.Context(), "A2", "R1"))
		}
		api.ServeHTTP(w, r)
	})
	c, s := newTestClient(t, h)
	sess = s
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	_, err := c.GetProfile(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, api.refreshCalls.Load())
	assert.EqualValues(t, 2, api.profileCalls.Load())
}

func TestRenew_SessionReplacedDuringRenewal(t *testing.T) {
	api := &fakeAPI{valid: "A2", next: "A2"}

	reauthed := false
	c, sess := newTestClient(t, api, WithReauthHandler(func(context.Context, error) { reauthed = true }))
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "A1", "R1"))

	// A fresh login completes while the refresh call is in flight.
	api.onRefresh = func() { assert.NoError(t, sess.Save(ctx, "B1", "RB")) }

	_, err := c.GetProfile(ctx)
	require.ErrorIs(t, err, ErrRenewalFailed)
	assert.ErrorIs(t, err, session.ErrSessionChanged)

	assert.Equal(t, "B1", sess.Token().AccessToken)
	assert.Equal(t, "RB", sess.RefreshToken())
	assert.False(t, reauthed)
}

func TestLogin(t *testing.T) {
	var refreshCalls int
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/":
			assert.Empty(t, r.Header.Values(common.AuthorizationHeaderName))
			var in models.TokenRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access":"A1","refresh":"R1"}`))
		case "/api/token/refresh/":
			refreshCalls++
		}
	})
	c, sess := newTestClient(t, h)
	ctx := context.Background()

	t.Run("bad credentials are not renewed", func(t *testing.T) {
		require.NoError(t, sess.Save(ctx, "OLD", "ROLD"))

		_, err := c.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrUnauthorized)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "No active account found with the given credentials", apiErr.Detail())
		assert.Equal(t, 0, refreshCalls)
		assert.Equal(t, "OLD", sess.Token().AccessToken)
	})

	t.Run("success replaces session", func(t *testing.T) {
		pair, err := c.Login(ctx, "alice", "secret")
		require.NoError(t, err)
		assert.Equal(t, "A1", pair.Access)
		assert.Equal(t, "A1", sess.Token().AccessToken)
		assert.Equal(t, "R1", sess.RefreshToken())
	})
}

func TestLogin_IncompletePair(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access":"A1"}`))
	})
	c, sess := newTestClient(t, h)

	_, err := c.Login(context.Background(), "alice", "secret")
	assert.Error(t, err)
	assert.False(t, sess.Authenticated())
}

func TestRegister_SendsConfirmation(t *testing.T) {
	var got models.RegisterRequest
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/register/", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	c, _ := newTestClient(t, h)

	err := c.Register(context.Background(), models.RegisterRequest{Username: "bob", Email: "b@example.com", Password: "longpassword"})
	require.NoError(t, err)
	assert.Equal(t, "longpassword", got.Password2)
}

func TestDo_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		detail string
	}{
		{"validation", http.StatusBadRequest, `{"title":["This field is required."]}`, ErrValidation, `{"title":["This field is required."]}`},
		{"not found", http.StatusNotFound, `{"message":"No workout for today"}`, ErrValidation, "No workout for today"},
		{"forbidden", http.StatusForbidden, `{"detail":"nope"}`, ErrValidation, "nope"},
		{"server", http.StatusInternalServerError, `oops`, ErrServer, "oops"},
		{"coach error", http.StatusBadRequest, `{"error":"Messages list is required"}`, ErrValidation, "Messages list is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c, _ := newTestClient(t, h)

			_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x/"})
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, StatusOf(err))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.detail, apiErr.Detail())
			assert.Equal(t, "/x/", apiErr.Path)
		})
	}
}

func TestList_AcceptsArrayAndPage(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts/":
			_, _ = w.Write([]byte(`{"count":2,"next":null,"previous":null,"results":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`))
		case "/api/progress/":
			_, _ = w.Write([]byte(`[{"id":3,"date":"2026-01-02","weight":"80.10","notes":""}]`))
		}
	})
	c, _ := newTestClient(t, h)
	ctx := context.Background()

	posts, err := c.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "b", posts[1].Title)

	entries, err := c.ListProgress(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 80.1, float64(*entries[0].Weight), 0.001)
}

func TestDo_EmptyBodyOnNoContent(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, h)

	assert.NoError(t, c.DeletePost(context.Background(), 5))
}

func TestAPIError_DetailTruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("ж", maxDetailLen+10)
	apiErr := &APIError{Status: http.StatusBadGateway, Body: []byte(body)}

	d := apiErr.Detail()
	assert.True(t, utf8.ValidString(d))
	assert.Equal(t, strings.Repeat("ж", maxDetailLen)+"...", d)
}

func TestDo_OversizedBodyIsRejected(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, MaxResponseSize+1))
	})
	c, _ := newTestClient(t, h)

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/posts/", NoAuth: true})
	require.ErrorIs(t, err, ErrServer)
	assert.Contains(t, err.Error(), "exceeds")
}
