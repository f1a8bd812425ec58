package terpene

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

// row mirrors the terpenes table.
type row struct {
	ID           string
	Name         string
	Aroma        string
	Effects      string // JSON array
	Description  string
	BoilingPoint sql.NullFloat64
	StrainIDs    string // JSON array
	VectorID     string
	IsActive     int64
	CreatedAt    int64
	UpdatedAt    int64
}

func toRow(t *domain.Terpene) (row, error) {
	effects, err := json.Marshal(emptyIfNil(t.Effects))
	if err != nil {
		return row{}, err
	}
	strainIDs, err := json.Marshal(emptyIfNil(t.StrainIDs))
	if err != nil {
		return row{}, err
	}

	r := row{
		ID:          t.ID,
		Name:        t.Name,
		Aroma:       t.Aroma,
		Effects:     string(effects),
		Description: t.Description,
		StrainIDs:   string(strainIDs),
		VectorID:    t.VectorID,
		CreatedAt:   t.CreatedAt.Unix(),
		UpdatedAt:   t.UpdatedAt.Unix(),
	}
	if t.IsActive {
		r.IsActive = 1
	}
	if t.BoilingPoint != 0 {
		r.BoilingPoint = sql.NullFloat64{Float64: t.BoilingPoint, Valid: true}
	}
	return r, nil
}

func (r *row) toDomain() (domain.Terpene, error) {
	var effects, strainIDs []string
	if err := json.Unmarshal([]byte(r.Effects), &effects); err != nil {
		return domain.Terpene{}, err
	}
	if err := json.Unmarshal([]byte(r.StrainIDs), &strainIDs); err != nil {
		return domain.Terpene{}, err
	}

	return domain.Terpene{
		ID:           r.ID,
		Name:         r.Name,
		Aroma:        r.Aroma,
		Effects:      effects,
		Description:  r.Description,
		BoilingPoint: r.BoilingPoint.Float64,
		StrainIDs:    strainIDs,
		VectorID:     r.VectorID,
		IsActive:     r.IsActive == 1,
		CreatedAt:    time.Unix(r.CreatedAt, 0).UTC(),
		UpdatedAt:    time.Unix(r.UpdatedAt, 0).UTC(),
	}, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
