package terpene

import (
	"context"

	"github.com/leaf-cloud/straindex/internal/domain"
)

// Store is the document-store surface the terpene service needs.
type Store interface {
	Create(ctx context.Context, t *domain.Terpene) error
	GetByID(ctx context.Context, id string) (domain.Terpene, error)
	FindByName(ctx context.Context, name string) (domain.Terpene, error)
	List(ctx context.Context, offset, limit int) ([]domain.Terpene, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, p domain.TerpenePatch) (domain.Terpene, error)
	SetVectorID(ctx context.Context, id, vectorID string) error
	SoftDelete(ctx context.Context, id string) error
	LinkStrain(ctx context.Context, id, strainID string) (domain.Terpene, error)
	UnlinkStrain(ctx context.Context, id, strainID string) (domain.Terpene, error)
}

// StrainStore resolves strain references on link and expansion.
type StrainStore interface {
	GetByID(ctx context.Context, id string) (domain.Strain, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Strain, error)
}

// VectorStore is the mirror surface: upsert on write, search on query.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, p domain.Point) error
	Search(ctx context.Context, collection string, vector []float32,
		filter domain.Filter, limit int) ([]domain.ScoredPoint, error)
}
