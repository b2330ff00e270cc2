package models

import "time"

type Author struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar,omitempty"`
}

type Post struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Image         *string   `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	User          Author    `json:"user"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	IsLiked       bool      `json:"is_liked"`
}

// PostInput is used for both create and partial update.
type PostInput struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

type Comment struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      Author    `json:"user"`
}

type CommentInput struct {
	Content string `json:"content"`
}

// Page is the paginated list envelope some list endpoints return.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
