package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/neurofit/internal/client/client"
	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

const DefaultCoachPrompt = "You are a professional fitness coach."

var ErrEmptyQuestion = errors.New("question is empty")

// CoachService keeps one conversation with the AI coach. Every question is
// sent together with the whole history, starting with the system prompt.
type CoachService interface {
	Ask(ctx context.Context, question string) (string, error)
	History() []models.CoachMessage
	Reset()
}

type coachService struct {
	client client.Client
	prompt string

	mu      sync.Mutex
	history []models.CoachMessage
}

func NewCoachService(c client.Client, prompt string) CoachService {
	if prompt == "" {
		prompt = DefaultCoachPrompt
	}
	s := &coachService{client: c, prompt: prompt}
	s.Reset()
	return s
}

// Ask appends the question and the coach's answer to the history. A failed
// call leaves the history unchanged, so the question can be asked again.
func (s *coachService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.snapshot(), models.CoachMessage{Role: models.RoleUser, Content: question})
	answer, err := s.client.CoachGenerate(ctx, msgs)
	if err != nil {
		return "", err
	}
	s.history = append(msgs, models.CoachMessage{Role: models.RoleAssistant, Content: answer})
	return answer, nil
}

// History returns the visible conversation, without the system prompt.
func (s *coachService) History() []models.CoachMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CoachMessage, 0, len(s.history))
	for _, m := range s.history {
		if m.Role != models.RoleSystem {
			out = append(out, m)
		}
	}
	return out
}

func (s *coachService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = []models.CoachMessage{{Role: models.RoleSystem, Content: s.prompt}}
}

// snapshot must be called with s.mu held.
func (s *coachService) snapshot() []models.CoachMessage {
	return append([]models.CoachMessage(nil), s.history...)
}
