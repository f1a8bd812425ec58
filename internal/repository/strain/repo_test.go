package strain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/leaf-cloud/straindex/internal/docstore"
	"github.com/leaf-cloud/straindex/internal/domain"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := docstore.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open docstore: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func newStrain(name string, st domain.StrainType) *domain.Strain {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Strain{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        st,
		THC:         18.5,
		CBD:         0.4,
		Description: "test strain",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := newStrain("Blue Dream", domain.StrainHybrid)
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Blue Dream" || got.Type != domain.StrainHybrid {
		t.Errorf("unexpected strain: %+v", got)
	}
	if got.THC != 18.5 || got.CBD != 0.4 {
		t.Errorf("cannabinoids lost: thc=%v cbd=%v", got.THC, got.CBD)
	}
}

func TestCreate_DuplicateActiveName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newStrain("OG Kush", domain.StrainIndica)); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.Create(ctx, newStrain("OG Kush", domain.StrainIndica))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := newStrain("Sour Diesel", domain.StrainSativa)
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.SoftDelete(ctx, in.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	got, err := repo.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got.IsActive {
		t.Error("expected inactive strain")
	}

	if _, err := repo.FindByName(ctx, "Sour Diesel"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound by name after delete, got %v", err)
	}

	list, err := repo.List(ctx, 0, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("soft-deleted strain listed: %+v", list)
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := newStrain("Gelato", domain.StrainHybrid)
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	thc := 22.0
	desc := "dessert strain"
	got, err := repo.Update(ctx, in.ID, domain.StrainPatch{THC: &thc, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got.THC != 22.0 || got.Description != "dessert strain" {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.Name != "Gelato" || got.Type != domain.StrainHybrid {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	thc := 20.0
	_, err := repo.Update(context.Background(), "missing", domain.StrainPatch{THC: &thc})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByIDs_PreservesOrderSkipsInactive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := newStrain("A-Strain", domain.StrainIndica)
	b := newStrain("B-Strain", domain.StrainSativa)
	c := newStrain("C-Strain", domain.StrainHybrid)
	for _, s := range []*domain.Strain{a, b, c} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("create %s: %v", s.Name, err)
		}
	}
	if err := repo.SoftDelete(ctx, b.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	got, err := repo.GetByIDs(ctx, []string{c.ID, b.ID, a.ID, "ghost"})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 strains, got %d", len(got))
	}
	if got[0].ID != c.ID || got[1].ID != a.ID {
		t.Errorf("order not preserved: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestGetByIDs_Empty(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
