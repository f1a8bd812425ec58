// Package strain implements plain strain CRUD over the document store.
// Strains carry no vector mirror; they are referenced from terpenes.
package strain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leaf-cloud/straindex/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Store is the document-store surface the strain service needs.
type Store interface {
	Create(ctx context.Context, s *domain.Strain) error
	GetByID(ctx context.Context, id string) (domain.Strain, error)
	FindByName(ctx context.Context, name string) (domain.Strain, error)
	List(ctx context.Context, offset, limit int) ([]domain.Strain, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, p domain.StrainPatch) (domain.Strain, error)
	SoftDelete(ctx context.Context, id string) error
}

// Service implements the strain operations.
type Service struct {
	store       Store
	pageSize    int
	maxPageSize int
	now         func() time.Time
}

// New creates the strain service.
func New(store Store) *Service {
	return &Service{
		store:       store,
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

// Create validates and persists a new strain.
func (s *Service) Create(ctx context.Context, st *domain.Strain) error {
	if err := st.Validate(); err != nil {
		return err
	}

	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	now := s.now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now
	st.IsActive = true

	return s.store.Create(ctx, st)
}

// Get returns a strain by id, soft-deleted ones included.
func (s *Service) Get(ctx context.Context, id string) (domain.Strain, error) {
	return s.store.GetByID(ctx, id)
}

// FindByName returns an active strain by exact name.
func (s *Service) FindByName(ctx context.Context, name string) (domain.Strain, error) {
	if name == "" {
		return domain.Strain{}, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	return s.store.FindByName(ctx, name)
}

// List returns a page of active strains with the total active count.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]domain.Strain, int, error) {
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
		items = []domain.Strain{}
	}
	return items, total, nil
}

// Update applies a partial update to an active strain.
func (s *Service) Update(ctx context.Context, id string, p domain.StrainPatch) (domain.Strain, error) {
	if p.Type != nil {
		probe := domain.Strain{Name: "probe", Type: *p.Type}
		if err := probe.Validate(); err != nil {
			return domain.Strain{}, err
		}
	}
	return s.store.Update(ctx, id, p)
}

// Delete soft-deletes a strain. Terpene links to it stay in place and
// are filtered out on expansion.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.SoftDelete(ctx, id)
}
