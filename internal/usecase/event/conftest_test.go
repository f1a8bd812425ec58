package event

import (
	"context"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

type mockInteractionStore struct {
	recordFn func(ctx context.Context, in *domain.Interaction) error
	touchFn  func(ctx context.Context, sessionID, userID string, at time.Time) error

	recorded []domain.Interaction
	touched  []string
}

func (m *mockInteractionStore) Record(ctx context.Context, in *domain.Interaction) error {
	if m.recordFn != nil {
		return m.recordFn(ctx, in)
	}
	m.recorded = append(m.recorded, *in)
	return nil
}

func (m *mockInteractionStore) TouchSession(ctx context.Context, sessionID, userID string, at time.Time) error {
	if m.touchFn != nil {
		return m.touchFn(ctx, sessionID, userID, at)
	}
	m.touched = append(m.touched, sessionID)
	return nil
}

type mockVectorStore struct {
	upsertFn func(ctx context.Context, collection string, p domain.Point) error

	upserted []domain.Point
}

func (m *mockVectorStore) Upsert(ctx context.Context, collection string, p domain.Point) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, p)
	}
	m.upserted = append(m.upserted, p)
	return nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type mockChat struct {
	completeFn func(ctx context.Context, prompt domain.ChatPrompt) (domain.ChatResult, error)
	calls      int
}

func (m *mockChat) Complete(ctx context.Context, prompt domain.ChatPrompt) (domain.ChatResult, error) {
	m.calls++
	if m.completeFn != nil {
		return m.completeFn(ctx, prompt)
	}
	return domain.ChatResult{Content: `{"category":"learning","intent":"research",` +
		`"sentiment":"positive","complexity":"medium","engagement":6,"tags":["terpene"]}`}, nil
}

type mockDispatcher struct {
	events []*domain.UserEvent
}

func (m *mockDispatcher) Emit(_ context.Context, e *domain.UserEvent) {
	m.events = append(m.events, e)
}
