package sandbox

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

// findProgress must be called with s.mu held.
func (s *Server) findProgress(owner, id int) (int, *models.ProgressEntry) {
	for i, e := range s.progress[owner] {
		if e.ID == id {
			return i, e
		}
	}
	return -1, nil
}

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ProgressEntry{}
	for _, e := range s.progress[userID(r)] {
		out = append(out, *e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProgress(w http.ResponseWriter, r *http.Request) {
	var in models.ProgressInput
	if err := readJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if in.Weight <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"weight": {"Ensure this value is greater than 0."}})
		return
	}

	owner := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	weight := in.Weight
	e := &models.ProgressEntry{ID: s.newID(), Date: s.today(), Weight: &weight, Notes: in.Notes}
	if a := s.accountByID(owner); a != nil {
		e.Height = a.user.Height
	}
	s.progress[owner] = append(s.progress[owner], e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, e := s.findProgress(userID(r), pathID(r))
	if e == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handlePatchProgress applies only the fields present in the body.
func (s *Server) handlePatchProgress(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Weight *models.Decimal `json:"weight"`
		Notes  *string         `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if in.Weight != nil && *in.Weight <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"weight": {"Ensure this value is greater than 0."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, e := s.findProgress(userID(r), pathID(r))
	if e == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if in.Weight != nil {
		e.Weight = in.Weight
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteProgress(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	i, e := s.findProgress(owner, pathID(r))
	if e == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	list := s.progress[owner]
	s.progress[owner] = append(list[:i], list[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}
