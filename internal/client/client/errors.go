package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNetwork       = errors.New("network error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRenewalFailed = errors.New("session renewal failed")
	ErrValidation    = errors.New("request rejected")
	ErrServer        = errors.New("server error")
)

// APIError is a response with status >= 400. The body is kept verbatim so the
// caller can show it to the user.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Detail())
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrValidation
	}
}

// maxDetailLen is counted in runes.
const maxDetailLen = 300

// Detail extracts a human-readable message from the body. It recognizes the
// "detail", "error" and "message" keys and falls back to the raw text.
func (e *APIError) Detail() string {
	var obj map[string]any
	if err := json.Unmarshal(e.Body, &obj); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := obj[key].(string); ok && s != "" {
				return s
			}
		}
	}
	s := strings.TrimSpace(string(e.Body))
	if r := []rune(s); len(r) > maxDetailLen {
		s = string(r[:maxDetailLen]) + "..."
	}
	return s
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
