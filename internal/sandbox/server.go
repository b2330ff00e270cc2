// Package sandbox is an in-memory stand-in for the NeuroFit REST API.
//
// It implements the same routes and wire formats as the real backend, so the
// client and the CLI can be exercised without it: JWT access tokens, opaque
// refresh tokens, the profile, and simple CRUD for workouts, nutrition, posts
// and progress. Generated plans and coach answers are canned. Test hooks let
// a caller expire access tokens or revoke refresh tokens on demand.
package sandbox

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
	"github.com/dmitrijs2005/neurofit/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"
)

const DefaultAccessTTL = 5 * time.Minute

type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) { s.accessTTL = ttl }
}

// WithRefreshRotation makes /token/refresh/ issue a new refresh token and
// revoke the presented one.
func WithRefreshRotation() Option {
	return func(s *Server) { s.rotate = true }
}

// WithClock replaces time.Now, for tests that need deterministic expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

type account struct {
	user         models.User
	passwordHash []byte
}

type Server struct {
	mu sync.Mutex

	secret    []byte
	accessTTL time.Duration
	rotate    bool
	now       func() time.Time

	// generation is embedded in every access token. Bumping it invalidates
	// all tokens issued so far.
	generation int64

	nextID    int
	accounts  map[string]*account
	refresh   map[string]int
	workouts  map[int][]*models.Workout
	nutrition map[int][]*models.NutritionPlan
	posts     []*post
	progress  map[int][]*models.ProgressEntry

	// entropy feeds refresh token ULIDs; guarded by mu.
	entropy io.Reader

	refreshCalls atomic.Int64
	metrics      *metrics
	router       *mux.Router
}

func New(opts ...Option) *Server {
	s := &Server{
		secret:    common.GenerateRandByteArray(32),
		accessTTL: DefaultAccessTTL,
		now:       time.Now,
		accounts:  make(map[string]*account),
		refresh:   make(map[string]int),
		workouts:  make(map[int][]*models.Workout),
		nutrition: make(map[int][]*models.NutritionPlan),
		progress:  make(map[int][]*models.ProgressEntry),
		entropy:   ulid.Monotonic(rand.Reader, 0),
		metrics:   newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.metrics.instrument)

	api.HandleFunc("/token/", s.handleToken).Methods(http.MethodPost)
	api.HandleFunc("/token/refresh/", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/users/register/", s.handleRegister).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireAuth)

	authed.HandleFunc("/logout/", s.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/users/profile/", s.handleGetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/users/profile/", s.handlePatchProfile).Methods(http.MethodPatch)

	authed.HandleFunc("/coaches/generate/", s.handleCoach).Methods(http.MethodPost)

	authed.HandleFunc("/workouts/generate/", s.handleGenerateWorkout).Methods(http.MethodPost)
	authed.HandleFunc("/workouts/latest/", s.handleLatestWorkout).Methods(http.MethodGet)
	authed.HandleFunc("/workouts/{id:[0-9]+}/complete/", s.handleCompleteWorkout).Methods(http.MethodPost)

	authed.HandleFunc("/nutrition/generate/", s.handleGenerateNutrition).Methods(http.MethodPost)
	authed.HandleFunc("/nutrition/latest/", s.handleLatestNutrition).Methods(http.MethodGet)

	authed.HandleFunc("/posts/", s.handleListPosts).Methods(http.MethodGet)
	authed.HandleFunc("/posts/", s.handleCreatePost).Methods(http.MethodPost)
	authed.HandleFunc("/posts/{id:[0-9]+}/", s.handleGetPost).Methods(http.MethodGet)
	authed.HandleFunc("/posts/{id:[0-9]+}/", s.handlePatchPost).Methods(http.MethodPatch)
	authed.HandleFunc("/posts/{id:[0-9]+}/", s.handleDeletePost).Methods(http.MethodDelete)
	authed.HandleFunc("/posts/{id:[0-9]+}/like/", s.handleLikePost).Methods(http.MethodPost)
	authed.HandleFunc("/posts/{id:[0-9]+}/comments/", s.handleListComments).Methods(http.MethodGet)
	authed.HandleFunc("/posts/{id:[0-9]+}/comments/", s.handleAddComment).Methods(http.MethodPost)

	authed.HandleFunc("/progress/", s.handleListProgress).Methods(http.MethodGet)
	authed.HandleFunc("/progress/", s.handleCreateProgress).Methods(http.MethodPost)
	authed.HandleFunc("/progress/{id:[0-9]+}/", s.handleGetProgress).Methods(http.MethodGet)
	authed.HandleFunc("/progress/{id:[0-9]+}/", s.handlePatchProgress).Methods(http.MethodPatch)
	authed.HandleFunc("/progress/{id:[0-9]+}/", s.handleDeleteProgress).Methods(http.MethodDelete)

	return r
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh
// tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]int)
}

// RefreshCalls counts requests to /token/refresh/, successful or not.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

type accessClaims struct {
	jwt.RegisteredClaims
	Generation int64 `json:"gen"`
}

func (s *Server) issueAccess(userID int) (string, error) {
	now := s.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		Generation: s.generation,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

var errTokenInvalid = errors.New("given token not valid for any token type")

// parseAccess must be called with s.mu held.
func (s *Server) parseAccess(raw string) (int, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || claims.Generation != s.generation {
		return 0, errTokenInvalid
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errTokenInvalid
	}
	return id, nil
}

type ctxKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values := r.Header.Values(common.AuthorizationHeaderName)
		if len(values) != 1 || !strings.HasPrefix(values[0], "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		s.mu.Lock()
		userID, err := s.parseAccess(strings.TrimPrefix(values[0], "Bearer "))
		s.mu.Unlock()
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func (s *Server) today() string {
	return s.now().Format(time.DateOnly)
}

// newID must be called with s.mu held.
func (s *Server) newID() int {
	s.nextID++
	return s.nextID
}
