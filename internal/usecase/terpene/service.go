// Package terpene implements terpene CRUD with a vector mirror: every
// content change re-embeds the document and upserts it into the terpene
// collection so semantic queries stay current.
package terpene

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/collections"
	"github.com/leaf-cloud/straindex/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service implements the terpene operations.
type Service struct {
	store    Store
	strains  StrainStore
	vectors  VectorStore
	embedder domain.Embedder
	chat     domain.ChatCompleter
	logger   *zap.Logger

	pageSize    int
	maxPageSize int
	now         func() time.Time
}

// New creates the terpene service. embedder and chat may be nil: the
// service then runs CRUD-only, with the vector mirror and Query disabled.
func New(
	store Store, strains StrainStore, vectors VectorStore,
	embedder domain.Embedder, chat domain.ChatCompleter, logger *zap.Logger,
) *Service {
	return &Service{
		store:       store,
		strains:     strains,
		vectors:     vectors,
		embedder:    embedder,
		chat:        chat,
		logger:      logger,
		pageSize:    defaultPageSize,
		maxPageSize: maxPageSize,
		now:         time.Now,
	}
}

// WithPaging configures the default and maximum page sizes.
func (s *Service) WithPaging(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.pageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Create validates, persists and mirrors a new terpene. A mirror failure
// is logged and the document survives without a vector reference.
func (s *Service) Create(ctx context.Context, t *domain.Terpene) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := s.now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.IsActive = true

	if err := s.store.Create(ctx, t); err != nil {
		return err
	}

	s.mirror(ctx, t)
	return nil
}

// Get returns a terpene by id, soft-deleted ones included.
func (s *Service) Get(ctx context.Context, id string) (domain.Terpene, error) {
	return s.store.GetByID(ctx, id)
}

// FindByName returns an active terpene by exact name.
func (s *Service) FindByName(ctx context.Context, name string) (domain.Terpene, error) {
	if name == "" {
		return domain.Terpene{}, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	return s.store.FindByName(ctx, name)
}

// List returns a page of active terpenes with the total active count.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]domain.Terpene, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	items, err := s.store.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []domain.Terpene{}
	}
	return items, total, nil
}

// Update applies a partial update. The vector mirror is regenerated only
// when a content-bearing field changed.
func (s *Service) Update(ctx context.Context, id string, p domain.TerpenePatch) (domain.Terpene, error) {
	updated, err := s.store.Update(ctx, id, p)
	if err != nil {
		return domain.Terpene{}, err
	}

	if p.TouchesContent() {
		s.mirror(ctx, &updated)
	}
	return updated, nil
}

// Delete soft-deletes a terpene. The vector mirror stays in place;
// callers resolving a search hit check document liveness.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.SoftDelete(ctx, id)
}

// AttachStrain links an existing active strain. Idempotent.
func (s *Service) AttachStrain(ctx context.Context, id, strainID string) (domain.Terpene, error) {
	strain, err := s.strains.GetByID(ctx, strainID)
	if err != nil {
		return domain.Terpene{}, fmt.Errorf("strain %s: %w", strainID, err)
	}
	if !strain.IsActive {
		return domain.Terpene{}, fmt.Errorf("strain %s: %w", strainID, domain.ErrNotFound)
	}
	return s.store.LinkStrain(ctx, id, strainID)
}

// DetachStrain removes a strain link. Unlinking an absent strain is a no-op.
func (s *Service) DetachStrain(ctx context.Context, id, strainID string) (domain.Terpene, error) {
	return s.store.UnlinkStrain(ctx, id, strainID)
}

// Strains expands a terpene's strain references, skipping soft-deleted ones.
func (s *Service) Strains(ctx context.Context, id string) ([]domain.Strain, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(t.StrainIDs) == 0 {
		return []domain.Strain{}, nil
	}
	return s.strains.GetByIDs(ctx, t.StrainIDs)
}

// mirror embeds the terpene's search text and upserts it into the
// terpene collection, recording the point id on the document the first
// time. Failures are logged, never surfaced: the document is the source
// of truth, the mirror is best-effort.
func (s *Service) mirror(ctx context.Context, t *domain.Terpene) {
	if s.embedder == nil {
		return
	}

	res, err := s.embedder.Embed(ctx, t.SearchText())
	if err != nil {
		s.logger.Warn("Terpene mirror skipped: embedding failed",
			zap.String("terpene_id", t.ID), zap.Error(err))
		return
	}

	vectorID := t.VectorID
	if vectorID == "" {
		vectorID = uuid.NewString()
	}
	point := collections.TerpenePoint(t, res.Embedding)
	point.ID = vectorID

	if err := s.vectors.Upsert(ctx, collections.Terpenes, point); err != nil {
		s.logger.Warn("Terpene mirror upsert failed",
			zap.String("terpene_id", t.ID), zap.Error(err))
		return
	}

	if t.VectorID != vectorID {
		if err := s.store.SetVectorID(ctx, t.ID, vectorID); err != nil {
			s.logger.Warn("Vector back-reference not recorded",
				zap.String("terpene_id", t.ID), zap.Error(err))
			return
		}
		t.VectorID = vectorID
	}
}
