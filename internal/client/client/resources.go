package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

const (
	pathProfile           = "/users/profile/"
	pathCoachGenerate     = "/coaches/generate/"
	pathWorkoutGenerate   = "/workouts/generate/"
	pathWorkoutLatest     = "/workouts/latest/"
	pathNutritionGenerate = "/nutrition/generate/"
	pathNutritionLatest   = "/nutrition/latest/"
	pathPosts             = "/posts/"
	pathProgress          = "/progress/"
)

func workoutCompletePath(id int) string { return fmt.Sprintf("/workouts/%d/complete/", id) }
func postPath(id int) string            { return fmt.Sprintf("/posts/%d/", id) }
func postLikePath(id int) string        { return fmt.Sprintf("/posts/%d/like/", id) }
func postCommentsPath(id int) string    { return fmt.Sprintf("/posts/%d/comments/", id) }
func progressPath(id int) string        { return fmt.Sprintf("/progress/%d/", id) }

// call runs a request and decodes the reply into out when out is not nil.
func (c *HTTPClient) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// list decodes either a bare JSON array or a paginated {"results": [...]}
// envelope. Which one comes back depends on the server's pagination settings.
func list[T any](ctx context.Context, c *HTTPClient, path string) ([]T, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page models.Page[T]
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		return page.Results, nil
	}

	var items []T
	if err := resp.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, http.MethodGet, pathProfile, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, http.MethodPatch, pathProfile, update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) CoachGenerate(ctx context.Context, messages []models.CoachMessage) (string, error) {
	var answer models.CoachAnswer
	if err := c.call(ctx, http.MethodPost, pathCoachGenerate, models.CoachRequest{Messages: messages}, &answer); err != nil {
		return "", err
	}
	return answer.Answer, nil
}

func (c *HTTPClient) GenerateWorkout(ctx context.Context) (*models.Workout, error) {
	var w models.Workout
	if err := c.call(ctx, http.MethodPost, pathWorkoutGenerate, nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// LatestWorkout returns today's workout. The server answers 404 when there is
// none; that surfaces as an *APIError matching ErrValidation.
func (c *HTTPClient) LatestWorkout(ctx context.Context) (*models.Workout, error) {
	var w models.Workout
	if err := c.call(ctx, http.MethodGet, pathWorkoutLatest, nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) CompleteWorkout(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodPost, workoutCompletePath(id), nil, nil)
}

func (c *HTTPClient) GenerateNutritionPlan(ctx context.Context) (*models.NutritionPlan, error) {
	var n models.NutritionPlan
	if err := c.call(ctx, http.MethodPost, pathNutritionGenerate, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *HTTPClient) LatestNutritionPlan(ctx context.Context) (*models.NutritionPlan, error) {
	var n models.NutritionPlan
	if err := c.call(ctx, http.MethodGet, pathNutritionLatest, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *HTTPClient) ListPosts(ctx context.Context) ([]models.Post, error) {
	return list[models.Post](ctx, c, pathPosts)
}

func (c *HTTPClient) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var p models.Post
	if err := c.call(ctx, http.MethodGet, postPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	var p models.Post
	if err := c.call(ctx, http.MethodPost, pathPosts, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) UpdatePost(ctx context.Context, id int, in models.PostInput) (*models.Post, error) {
	var p models.Post
	if err := c.call(ctx, http.MethodPatch, postPath(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) DeletePost(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, postPath(id), nil, nil)
}

func (c *HTTPClient) LikePost(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodPost, postLikePath(id), nil, nil)
}

func (c *HTTPClient) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	return list[models.Comment](ctx, c, postCommentsPath(postID))
}

func (c *HTTPClient) AddComment(ctx context.Context, postID int, content string) (*models.Comment, error) {
	var cm models.Comment
	if err := c.call(ctx, http.MethodPost, postCommentsPath(postID), models.CommentInput{Content: content}, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *HTTPClient) ListProgress(ctx context.Context) ([]models.ProgressEntry, error) {
	return list[models.ProgressEntry](ctx, c, pathProgress)
}

func (c *HTTPClient) GetProgress(ctx context.Context, id int) (*models.ProgressEntry, error) {
	var p models.ProgressEntry
	if err := c.call(ctx, http.MethodGet, progressPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreateProgress(ctx context.Context, in models.ProgressInput) (*models.ProgressEntry, error) {
	var p models.ProgressEntry
	if err := c.call(ctx, http.MethodPost, pathProgress, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) UpdateProgress(ctx context.Context, id int, in models.ProgressInput) (*models.ProgressEntry, error) {
	var p models.ProgressEntry
	if err := c.call(ctx, http.MethodPatch, progressPath(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) DeleteProgress(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, progressPath(id), nil, nil)
}
