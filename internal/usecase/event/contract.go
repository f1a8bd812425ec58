package event

import (
	"context"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

// InteractionStore persists the historical record of events.
type InteractionStore interface {
	Record(ctx context.Context, in *domain.Interaction) error
	TouchSession(ctx context.Context, sessionID, userID string, at time.Time) error
}

// VectorStore mirrors events as points.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, p domain.Point) error
}

// Embedder vectorizes the event search text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Dispatcher fans out the event to in-process subscribers.
type Dispatcher interface {
	Emit(ctx context.Context, event *domain.UserEvent)
}
