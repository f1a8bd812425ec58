// Package ask exposes a thin passthrough to the chat completion
// provider. No retrieval: the question goes to the model as-is.
package ask

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

// Request is a single free-form question. Model and System override the
// configured defaults when set.
type Request struct {
	Question string
	Model    string
	System   string
}

// Response is the provider's answer with usage accounting.
type Response struct {
	Answer       string
	Model        string
	TokensUsed   int
	FinishReason string
	Timestamp    time.Time
}

// Service answers questions through the configured chat provider.
type Service struct {
	chat domain.ChatCompleter
	now  func() time.Time
}

// New creates the ask service. chat may be nil when no credential is
// configured; Ask then fails with ErrChatNotConfigured.
func New(chat domain.ChatCompleter) *Service {
	return &Service{chat: chat, now: time.Now}
}

// Ask forwards the question to the chat provider.
func (s *Service) Ask(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Question) == "" {
		return Response{}, fmt.Errorf("question is required: %w", domain.ErrValidation)
	}
	if s.chat == nil {
		return Response{}, domain.ErrChatNotConfigured
	}

	result, err := s.chat.Complete(ctx, domain.ChatPrompt{
		System: req.System,
		Prompt: req.Question,
		Model:  req.Model,
	})
	if err != nil {
		return Response{}, err
	}

	return Response{
		Answer:       result.Content,
		Model:        result.Model,
		TokensUsed:   result.TokensUsed,
		FinishReason: result.FinishReason,
		Timestamp:    s.now().UTC(),
	}, nil
}
