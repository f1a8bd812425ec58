package chi

import (
	"context"
	"sync"

	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/usecase/ask"
	"github.com/leaf-cloud/straindex/internal/usecase/health"
	"github.com/leaf-cloud/straindex/internal/usecase/terpene"
)

type mockAsk struct {
	askFn func(ctx context.Context, req ask.Request) (ask.Response, error)
}

func (m *mockAsk) Ask(ctx context.Context, req ask.Request) (ask.Response, error) {
	if m.askFn != nil {
		return m.askFn(ctx, req)
	}
	return ask.Response{Answer: "answer", Model: "gpt-4o-mini", TokensUsed: 5}, nil
}

type mockTerpenes struct {
	createFn func(ctx context.Context, t *domain.Terpene) error
	getFn    func(ctx context.Context, id string) (domain.Terpene, error)
	findFn   func(ctx context.Context, name string) (domain.Terpene, error)
	listFn   func(ctx context.Context, page, pageSize int) ([]domain.Terpene, int, error)
	updateFn func(ctx context.Context, id string, p domain.TerpenePatch) (domain.Terpene, error)
	deleteFn func(ctx context.Context, id string) error
	attachFn func(ctx context.Context, id, strainID string) (domain.Terpene, error)
	detachFn func(ctx context.Context, id, strainID string) (domain.Terpene, error)
	queryFn  func(ctx context.Context, question string, topK int) (terpene.QueryAnswer, error)
}

func (m *mockTerpenes) Create(ctx context.Context, t *domain.Terpene) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = "t1"
	t.IsActive = true
	return nil
}

func (m *mockTerpenes) Get(ctx context.Context, id string) (domain.Terpene, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Terpene{ID: id, Name: "myrcene", IsActive: true}, nil
}

func (m *mockTerpenes) FindByName(ctx context.Context, name string) (domain.Terpene, error) {
	if m.findFn != nil {
		return m.findFn(ctx, name)
	}
	return domain.Terpene{ID: "t1", Name: name, IsActive: true}, nil
}

func (m *mockTerpenes) List(ctx context.Context, page, pageSize int) ([]domain.Terpene, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, pageSize)
	}
	return []domain.Terpene{}, 0, nil
}

func (m *mockTerpenes) Update(ctx context.Context, id string, p domain.TerpenePatch) (domain.Terpene, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	return domain.Terpene{ID: id, IsActive: true}, nil
}

func (m *mockTerpenes) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTerpenes) AttachStrain(ctx context.Context, id, strainID string) (domain.Terpene, error) {
	if m.attachFn != nil {
		return m.attachFn(ctx, id, strainID)
	}
	return domain.Terpene{ID: id, StrainIDs: []string{strainID}, IsActive: true}, nil
}

func (m *mockTerpenes) DetachStrain(ctx context.Context, id, strainID string) (domain.Terpene, error) {
	if m.detachFn != nil {
		return m.detachFn(ctx, id, strainID)
	}
	return domain.Terpene{ID: id, IsActive: true}, nil
}

func (m *mockTerpenes) Query(ctx context.Context, question string, topK int) (terpene.QueryAnswer, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, question, topK)
	}
	return terpene.QueryAnswer{Answer: "grounded answer"}, nil
}

type mockStrains struct {
	createFn func(ctx context.Context, s *domain.Strain) error
	getFn    func(ctx context.Context, id string) (domain.Strain, error)
	findFn   func(ctx context.Context, name string) (domain.Strain, error)
	listFn   func(ctx context.Context, page, pageSize int) ([]domain.Strain, int, error)
	updateFn func(ctx context.Context, id string, p domain.StrainPatch) (domain.Strain, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockStrains) Create(ctx context.Context, s *domain.Strain) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.ID = "s1"
	s.IsActive = true
	return nil
}

func (m *mockStrains) Get(ctx context.Context, id string) (domain.Strain, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Strain{ID: id, Name: "blue dream", IsActive: true}, nil
}

func (m *mockStrains) FindByName(ctx context.Context, name string) (domain.Strain, error) {
	if m.findFn != nil {
		return m.findFn(ctx, name)
	}
	return domain.Strain{ID: "s1", Name: name, IsActive: true}, nil
}

func (m *mockStrains) List(ctx context.Context, page, pageSize int) ([]domain.Strain, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, pageSize)
	}
	return []domain.Strain{}, 0, nil
}

func (m *mockStrains) Update(ctx context.Context, id string, p domain.StrainPatch) (domain.Strain, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	return domain.Strain{ID: id, IsActive: true}, nil
}

func (m *mockStrains) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockAnalytics struct {
	behaviorFn   func(ctx context.Context, userID string) (domain.BehaviorPattern, error)
	similarFn    func(ctx context.Context, userID string, limit int) ([]domain.SimilarUser, error)
	engagementFn func(ctx context.Context, userID string) (domain.EngagementMetrics, error)
	predictFn    func(ctx context.Context, userID string) domain.NextActionPrediction
	journeyFn    func(ctx context.Context, userID string, limit int) ([]domain.Interaction, error)
}

func (m *mockAnalytics) BehaviorPattern(ctx context.Context, userID string) (domain.BehaviorPattern, error) {
	if m.behaviorFn != nil {
		return m.behaviorFn(ctx, userID)
	}
	return domain.BehaviorPattern{UserID: userID, Categories: map[domain.Category]int{}}, nil
}

func (m *mockAnalytics) SimilarUsers(ctx context.Context, userID string, limit int) ([]domain.SimilarUser, error) {
	if m.similarFn != nil {
		return m.similarFn(ctx, userID, limit)
	}
	return []domain.SimilarUser{}, nil
}

func (m *mockAnalytics) Engagement(ctx context.Context, userID string) (domain.EngagementMetrics, error) {
	if m.engagementFn != nil {
		return m.engagementFn(ctx, userID)
	}
	return domain.EngagementMetrics{UserID: userID}, nil
}

func (m *mockAnalytics) PredictNextAction(ctx context.Context, userID string) domain.NextActionPrediction {
	if m.predictFn != nil {
		return m.predictFn(ctx, userID)
	}
	return domain.NextActionPrediction{UserID: userID, LikelyActions: []domain.LikelyAction{}}
}

func (m *mockAnalytics) Journey(ctx context.Context, userID string, limit int) ([]domain.Interaction, error) {
	if m.journeyFn != nil {
		return m.journeyFn(ctx, userID, limit)
	}
	return []domain.Interaction{}, nil
}

type mockEmitter struct {
	mu     sync.Mutex
	events []*domain.UserEvent
}

func (m *mockEmitter) EmitAsync(e *domain.UserEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *mockEmitter) emitted() []*domain.UserEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.UserEvent, len(m.events))
	copy(out, m.events)
	return out
}

type mockHealth struct {
	report health.Report
}

func (m *mockHealth) Check(_ context.Context) health.Report {
	if m.report.Status == "" {
		return health.Report{
			Status: health.Healthy,
			Checks: map[string]health.CheckResult{"vector_store": health.CheckOK},
		}
	}
	return m.report
}
