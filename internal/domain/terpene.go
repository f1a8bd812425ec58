package domain

import (
	"fmt"
	"time"
)

// Terpene is a domain CRUD entity, optionally mirrored into the vector
// store for semantic lookup. Soft-deleted via IsActive rather than removed,
// so the vector mirror may outlive the document (see DESIGN.md).
type Terpene struct {
	ID           string
	Name         string
	Aroma        string
	Effects      []string
	Description  string
	BoilingPoint float64 // celsius
	StrainIDs    []string
	VectorID     string // back-reference into the vector store
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate fails fast before any store call.
func (t *Terpene) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("terpene name is required: %w", ErrValidation)
	}
	return nil
}

// SearchText synthesizes the embedding input from the fixed field template.
func (t *Terpene) SearchText() string {
	s := "Terpene: " + t.Name
	if t.Aroma != "" {
		s += " | Aroma: " + t.Aroma
	}
	if len(t.Effects) > 0 {
		s += " | Effects: "
		for i, e := range t.Effects {
			if i > 0 {
				s += ", "
			}
			s += e
		}
	}
	if t.Description != "" {
		s += " | " + t.Description
	}
	return s
}

// TerpenePatch is a partial update. Nil means "leave unchanged".
type TerpenePatch struct {
	Name         *string
	Aroma        *string
	Effects      *[]string
	Description  *string
	BoilingPoint *float64
}

// TouchesContent reports whether a content-bearing field changed, which
// requires regenerating the vector mirror.
func (p TerpenePatch) TouchesContent() bool {
	return p.Name != nil || p.Aroma != nil || p.Effects != nil || p.Description != nil
}

// StrainType is the cultivar family of a strain.
type StrainType string

const (
	StrainIndica StrainType = "indica"
	StrainSativa StrainType = "sativa"
	StrainHybrid StrainType = "hybrid"
)

// Strain is a plain CRUD entity in the document store.
type Strain struct {
	ID          string
	Name        string
	Type        StrainType
	THC         float64 // percent
	CBD         float64 // percent
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate fails fast before any store call.
func (s *Strain) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("strain name is required: %w", ErrValidation)
	}
	switch s.Type {
	case StrainIndica, StrainSativa, StrainHybrid, "":
	default:
		return fmt.Errorf("unknown strain type %q: %w", s.Type, ErrValidation)
	}
	return nil
}

// StrainPatch is a partial update. Nil means "leave unchanged".
type StrainPatch struct {
	Name        *string
	Type        *StrainType
	THC         *float64
	CBD         *float64
	Description *string
}
