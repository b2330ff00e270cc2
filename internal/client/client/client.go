package client

import (
	"context"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
	"golang.org/x/oauth2"
)

// Client is the NeuroFit API surface used by services and the CLI.
type Client interface {
	Do(ctx context.Context, req Request) (*Response, error)
	Renew(ctx context.Context) (*oauth2.Token, error)

	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context) error

	GetProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)

	CoachGenerate(ctx context.Context, messages []models.CoachMessage) (string, error)

	GenerateWorkout(ctx context.Context) (*models.Workout, error)
	LatestWorkout(ctx context.Context) (*models.Workout, error)
	CompleteWorkout(ctx context.Context, id int) error

	GenerateNutritionPlan(ctx context.Context) (*models.NutritionPlan, error)
	LatestNutritionPlan(ctx context.Context) (*models.NutritionPlan, error)

	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id int) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id int, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id int) error
	LikePost(ctx context.Context, id int) error
	ListComments(ctx context.Context, postID int) ([]models.Comment, error)
	AddComment(ctx context.Context, postID int, content string) (*models.Comment, error)

	ListProgress(ctx context.Context) ([]models.ProgressEntry, error)
	GetProgress(ctx context.Context, id int) (*models.ProgressEntry, error)
	CreateProgress(ctx context.Context, in models.ProgressInput) (*models.ProgressEntry, error)
	UpdateProgress(ctx context.Context, id int, in models.ProgressInput) (*models.ProgressEntry, error)
	DeleteProgress(ctx context.Context, id int) error
}

var _ Client = (*HTTPClient)(nil)
