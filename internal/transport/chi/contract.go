package chi

import (
	"context"

	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/usecase/ask"
	"github.com/leaf-cloud/straindex/internal/usecase/health"
	"github.com/leaf-cloud/straindex/internal/usecase/terpene"
)

// AskService answers free-form questions.
type AskService interface {
	Ask(ctx context.Context, req ask.Request) (ask.Response, error)
}

// TerpeneService is the terpene CRUD and query surface.
type TerpeneService interface {
	Create(ctx context.Context, t *domain.Terpene) error
	Get(ctx context.Context, id string) (domain.Terpene, error)
	FindByName(ctx context.Context, name string) (domain.Terpene, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Terpene, int, error)
	Update(ctx context.Context, id string, p domain.TerpenePatch) (domain.Terpene, error)
	Delete(ctx context.Context, id string) error
	AttachStrain(ctx context.Context, id, strainID string) (domain.Terpene, error)
	DetachStrain(ctx context.Context, id, strainID string) (domain.Terpene, error)
	Query(ctx context.Context, question string, topK int) (terpene.QueryAnswer, error)
}

// StrainService is the strain CRUD surface.
type StrainService interface {
	Create(ctx context.Context, s *domain.Strain) error
	Get(ctx context.Context, id string) (domain.Strain, error)
	FindByName(ctx context.Context, name string) (domain.Strain, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Strain, int, error)
	Update(ctx context.Context, id string, p domain.StrainPatch) (domain.Strain, error)
	Delete(ctx context.Context, id string) error
}

// AnalyticsService derives behavior insights per user.
type AnalyticsService interface {
	BehaviorPattern(ctx context.Context, userID string) (domain.BehaviorPattern, error)
	SimilarUsers(ctx context.Context, userID string, limit int) ([]domain.SimilarUser, error)
	Engagement(ctx context.Context, userID string) (domain.EngagementMetrics, error)
	PredictNextAction(ctx context.Context, userID string) domain.NextActionPrediction
	Journey(ctx context.Context, userID string, limit int) ([]domain.Interaction, error)
}

// EventEmitter accepts behavioral events for asynchronous processing.
type EventEmitter interface {
	EmitAsync(e *domain.UserEvent)
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) health.Report
}
