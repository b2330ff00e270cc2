package sandbox

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

func withUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func userID(r *http.Request) int {
	id, _ := r.Context().Value(ctxKey{}).(int)
	return id
}

// AddUser registers an account directly, bypassing validation. It is meant for
// seeding test fixtures.
func (s *Server) AddUser(username, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := models.User{ID: s.newID(), Username: username, Email: email}
	s.accounts[username] = &account{user: u, passwordHash: hash}
	return u, nil
}

// accountByID must be called with s.mu held.
func (s *Server) accountByID(id int) *account {
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a
		}
	}
	return nil
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var in models.TokenRequest
	if err := readJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[in.Username]
	if !ok || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(in.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := s.issueAccess(a.user.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	refresh := s.newRefreshToken()
	s.refresh[refresh] = a.user.ID

	writeJSON(w, http.StatusOK, models.TokenPair{Access: access, Refresh: refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var in models.RefreshRequest
	if err := readJSON(r, &in); err != nil || in.RefreshToken == "" {
		s.metrics.refreshes.WithLabelValues(refreshInvalid).Inc()
		writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh_token": {"This field is required."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.refresh[in.RefreshToken]
	if !ok {
		s.metrics.refreshes.WithLabelValues(refreshRejected).Inc()
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	access, err := s.issueAccess(id)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := models.RefreshResponse{Access: access}
	if s.rotate {
		delete(s.refresh, in.RefreshToken)
		out.Refresh = s.newRefreshToken()
		s.refresh[out.Refresh] = id
	}
	s.metrics.refreshes.WithLabelValues(refreshOK).Inc()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	for tok, owner := range s.refresh {
		if owner == id {
			delete(s.refresh, tok)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := readJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	fieldErrs := map[string][]string{}
	if strings.TrimSpace(in.Username) == "" {
		fieldErrs["username"] = []string{"This field may not be blank."}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		fieldErrs["email"] = []string{"Enter a valid email address."}
	}
	if len(in.Password) < minPasswordLen {
		fieldErrs["password"] = []string{"This password is too short. It must contain at least 8 characters."}
	} else if in.Password != in.Password2 {
		fieldErrs["password"] = []string{"Password fields didn't match."}
	}

	s.mu.Lock()
	_, taken := s.accounts[in.Username]
	s.mu.Unlock()
	if taken {
		fieldErrs["username"] = []string{"A user with that username already exists."}
	}

	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	u, err := s.AddUser(in.Username, in.Email, in.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accountByID(userID(r))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileUpdate
	if err := readJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if in.Goal != nil && !validGoal(*in.Goal) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"goal": {"\"" + *in.Goal + "\" is not a valid choice."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accountByID(userID(r))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	u := &a.user
	if in.DateOfBirth != nil {
		u.DateOfBirth = in.DateOfBirth
	}
	if in.Gender != nil {
		u.Gender = in.Gender
	}
	if in.Height != nil {
		u.Height = in.Height
	}
	if in.Weight != nil {
		u.Weight = in.Weight
	}
	if in.Goal != nil {
		u.Goal = in.Goal
	}
	if in.HasEquipment != nil {
		u.HasEquipment = in.HasEquipment
	}
	writeJSON(w, http.StatusOK, a.user)
}

func validGoal(g string) bool {
	switch g {
	case models.GoalWeightLoss, models.GoalMuscleGain, models.GoalEndurance, models.GoalGeneralFitness:
		return true
	}
	return false
}

// newRefreshToken must be called with s.mu held. Tokens sort by issue time.
func (s *Server) newRefreshToken() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}
