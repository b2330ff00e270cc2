package sandbox

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

const postsPageSize = 10

type post struct {
	models.Post
	likes    map[int]bool
	comments []models.Comment
}

// view renders p as seen by viewer. Must be called with s.mu held.
func (s *Server) view(p *post, viewer int) models.Post {
	out := p.Post
	out.LikesCount = len(p.likes)
	out.CommentsCount = len(p.comments)
	out.IsLiked = p.likes[viewer]
	return out
}

// author must be called with s.mu held.
func (s *Server) author(id int) models.Author {
	if a := s.accountByID(id); a != nil {
		return models.Author{ID: a.user.ID, Username: a.user.Username, Avatar: a.user.Avatar}
	}
	return models.Author{ID: id}
}

// findPost must be called with s.mu held.
func (s *Server) findPost(id int) *post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// handleListPosts returns posts newest first, wrapped in a page envelope.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	viewer := userID(r)
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := models.Page[models.Post]{Count: len(s.posts), Results: []models.Post{}}
	start := (page - 1) * postsPageSize
	for i := len(s.posts) - 1 - start; i >= 0 && len(out.Results) < postsPageSize; i-- {
		out.Results = append(out.Results, s.view(s.posts[i], viewer))
	}
	if start+postsPageSize < len(s.posts) {
		next := "?page=" + strconv.Itoa(page+1)
		out.Next = &next
	}
	if page > 1 {
		prev := "?page=" + strconv.Itoa(page-1)
		out.Previous = &prev
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if err := readJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if fieldErrs := validatePost(in, false); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	viewer := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &post{
		Post: models.Post{
			ID:        s.newID(),
			Title:     in.Title,
			Content:   in.Content,
			CreatedAt: s.now().UTC().Truncate(time.Second),
			User:      s.author(viewer),
		},
		likes: make(map[int]bool),
	}
	s.posts = append(s.posts, p)
	writeJSON(w, http.StatusCreated, s.view(p, viewer))
}

func validatePost(in models.PostInput, partial bool) map[string][]string {
	errs := map[string][]string{}
	if !partial && strings.TrimSpace(in.Title) == "" {
		errs["title"] = []string{"This field is required."}
	}
	if !partial && strings.TrimSpace(in.Content) == "" {
		errs["content"] = []string{"This field is required."}
	}
	if len(in.Title) > 200 {
		errs["title"] = []string{"Ensure this field has no more than 200 characters."}
	}
	return errs
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(pathID(r))
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, s.view(p, userID(r)))
}

func (s *Server) handlePatchPost(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if err := readJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if fieldErrs := validatePost(in, true); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	viewer := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(pathID(r))
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if p.User.ID != viewer {
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}
	if in.Title != "" {
		p.Title = in.Title
	}
	if in.Content != "" {
		p.Content = in.Content
	}
	writeJSON(w, http.StatusOK, s.view(p, viewer))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	viewer, id := userID(r), pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.posts {
		if p.ID != id {
			continue
		}
		if p.User.ID != viewer {
			writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

// handleLikePost toggles the caller's like.
func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	viewer := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(pathID(r))
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if p.likes[viewer] {
		delete(p.likes, viewer)
	} else {
		p.likes[viewer] = true
	}
	writeJSON(w, http.StatusOK, s.view(p, viewer))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(pathID(r))
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	out := append([]models.Comment{}, p.comments...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var in models.CommentInput
	if err := readJSON(r, &in); err != nil || strings.TrimSpace(in.Content) == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"content": {"This field may not be blank."}})
		return
	}

	viewer := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(pathID(r))
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	c := models.Comment{
		ID:        s.newID(),
		Content:   in.Content,
		CreatedAt: s.now().UTC().Truncate(time.Second),
		User:      s.author(viewer),
	}
	p.comments = append(p.comments, c)
	writeJSON(w, http.StatusCreated, c)
}
