package analytics

import (
	"context"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/repository/interaction"
)

// VectorStore reads event points back from the vector store.
type VectorStore interface {
	Search(ctx context.Context, collection string, vector []float32,
		filter domain.Filter, limit int) ([]domain.ScoredPoint, error)
	Scroll(ctx context.Context, collection, cursor string, filter domain.Filter,
		limit int, withVectors bool) ([]domain.Point, string, error)
}

// InteractionStore reads engagement aggregates from the document store.
type InteractionStore interface {
	Engagement(ctx context.Context, userID string, since time.Time) (interaction.EngagementStats, error)
	ListRecent(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Interaction, error)
}
