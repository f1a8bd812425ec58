package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/repository/interaction"
)

type mockVectorStore struct {
	searchFn func(ctx context.Context, collection string, vector []float32,
		filter domain.Filter, limit int) ([]domain.ScoredPoint, error)
	scrollFn func(ctx context.Context, collection, cursor string, filter domain.Filter,
		limit int, withVectors bool) ([]domain.Point, string, error)
}

func (m *mockVectorStore) Search(ctx context.Context, collection string, vector []float32,
	filter domain.Filter, limit int) ([]domain.ScoredPoint, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, collection, vector, filter, limit)
	}
	return nil, nil
}

func (m *mockVectorStore) Scroll(ctx context.Context, collection, cursor string, filter domain.Filter,
	limit int, withVectors bool) ([]domain.Point, string, error) {
	if m.scrollFn != nil {
		return m.scrollFn(ctx, collection, cursor, filter, limit, withVectors)
	}
	return nil, "", nil
}

type mockInteractionStore struct {
	engagementFn func(ctx context.Context, userID string, since time.Time) (interaction.EngagementStats, error)
	listRecentFn func(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Interaction, error)
}

func (m *mockInteractionStore) Engagement(ctx context.Context, userID string, since time.Time) (interaction.EngagementStats, error) {
	if m.engagementFn != nil {
		return m.engagementFn(ctx, userID, since)
	}
	return interaction.EngagementStats{}, nil
}

func (m *mockInteractionStore) ListRecent(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Interaction, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, userID, since, limit)
	}
	return nil, nil
}

// eventPoint builds a vector-store point the way the event pipeline
// writes them.
func eventPoint(id, userID, eventType string, category domain.Category,
	ts time.Time, vector []float32) domain.Point {
	return domain.Point{
		ID:     id,
		Vector: vector,
		Payload: map[string]string{
			"user_id":    userID,
			"event_type": eventType,
			"category":   string(category),
			"timestamp":  strconv.FormatInt(ts.Unix(), 10),
		},
	}
}
