package terpene

import (
	"context"

	"github.com/leaf-cloud/straindex/internal/domain"
)

type mockStore struct {
	createFn      func(ctx context.Context, t *domain.Terpene) error
	getFn         func(ctx context.Context, id string) (domain.Terpene, error)
	findByNameFn  func(ctx context.Context, name string) (domain.Terpene, error)
	listFn        func(ctx context.Context, offset, limit int) ([]domain.Terpene, error)
	countFn       func(ctx context.Context) (int, error)
	updateFn      func(ctx context.Context, id string, p domain.TerpenePatch) (domain.Terpene, error)
	setVectorIDFn func(ctx context.Context, id, vectorID string) error
	softDeleteFn  func(ctx context.Context, id string) error
	linkFn        func(ctx context.Context, id, strainID string) (domain.Terpene, error)
	unlinkFn      func(ctx context.Context, id, strainID string) (domain.Terpene, error)

	created   []domain.Terpene
	vectorIDs map[string]string
}

func (m *mockStore) Create(ctx context.Context, t *domain.Terpene) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	m.created = append(m.created, *t)
	return nil
}

func (m *mockStore) GetByID(ctx context.Context, id string) (domain.Terpene, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Terpene{ID: id, Name: "myrcene", IsActive: true}, nil
}

func (m *mockStore) FindByName(ctx context.Context, name string) (domain.Terpene, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name)
	}
	return domain.Terpene{Name: name, IsActive: true}, nil
}

func (m *mockStore) List(ctx context.Context, offset, limit int) ([]domain.Terpene, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockStore) Update(ctx context.Context, id string, p domain.TerpenePatch) (domain.Terpene, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	return domain.Terpene{ID: id, Name: "myrcene", IsActive: true}, nil
}

func (m *mockStore) SetVectorID(ctx context.Context, id, vectorID string) error {
	if m.setVectorIDFn != nil {
		return m.setVectorIDFn(ctx, id, vectorID)
	}
	if m.vectorIDs == nil {
		m.vectorIDs = map[string]string{}
	}
	m.vectorIDs[id] = vectorID
	return nil
}

func (m *mockStore) SoftDelete(ctx context.Context, id string) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id)
	}
	return nil
}

func (m *mockStore) LinkStrain(ctx context.Context, id, strainID string) (domain.Terpene, error) {
	if m.linkFn != nil {
		return m.linkFn(ctx, id, strainID)
	}
	return domain.Terpene{ID: id, StrainIDs: []string{strainID}, IsActive: true}, nil
}

func (m *mockStore) UnlinkStrain(ctx context.Context, id, strainID string) (domain.Terpene, error) {
	if m.unlinkFn != nil {
		return m.unlinkFn(ctx, id, strainID)
	}
	return domain.Terpene{ID: id, IsActive: true}, nil
}

type mockStrainStore struct {
	getFn      func(ctx context.Context, id string) (domain.Strain, error)
	getByIDsFn func(ctx context.Context, ids []string) ([]domain.Strain, error)
}

func (m *mockStrainStore) GetByID(ctx context.Context, id string) (domain.Strain, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Strain{ID: id, Name: "blue dream", IsActive: true}, nil
}

func (m *mockStrainStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Strain, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	out := make([]domain.Strain, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Strain{ID: id, IsActive: true})
	}
	return out, nil
}

type mockVectorStore struct {
	upsertFn func(ctx context.Context, collection string, p domain.Point) error
	searchFn func(ctx context.Context, collection string, vector []float32,
		filter domain.Filter, limit int) ([]domain.ScoredPoint, error)

	upserted []domain.Point
}

func (m *mockVectorStore) Upsert(ctx context.Context, collection string, p domain.Point) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, p)
	}
	m.upserted = append(m.upserted, p)
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, collection string, vector []float32,
	filter domain.Filter, limit int) ([]domain.ScoredPoint, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, collection, vector, filter, limit)
	}
	return nil, nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type mockChat struct {
	completeFn func(ctx context.Context, prompt domain.ChatPrompt) (domain.ChatResult, error)
}

func (m *mockChat) Complete(ctx context.Context, prompt domain.ChatPrompt) (domain.ChatResult, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, prompt)
	}
	return domain.ChatResult{Content: "answer", Model: "gpt-4o-mini", TokensUsed: 10}, nil
}
