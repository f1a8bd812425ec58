// Package terpene persists terpene documents in the sqlite document
// store. Deletion is a soft toggle of is_active: GetByID still returns
// inactive rows, list and name lookups filter them out.
package terpene

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

const columns = `id, name, aroma, effects, description, boiling_point,
	strain_ids, vector_id, is_active, created_at, updated_at`

// Repo implements the terpene usecase store.
type Repo struct {
	db *sql.DB
}

// New creates a terpene repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a new terpene. An active terpene with the same name
// yields domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, t *domain.Terpene) error {
	row, err := toRow(t)
	if err != nil {
		return fmt.Errorf("encode terpene: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO terpenes (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Name, row.Aroma, row.Effects, row.Description, row.BoilingPoint,
		row.StrainIDs, row.VectorID, row.IsActive, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("terpene %q: %w", t.Name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert terpene: %w", err)
	}
	return nil
}

// GetByID returns a terpene by id, including soft-deleted ones.
func (r *Repo) GetByID(ctx context.Context, id string) (domain.Terpene, error) {
	return r.queryOne(ctx, `SELECT `+columns+` FROM terpenes WHERE id = ?`, id)
}

// FindByName returns an active terpene by exact name.
func (r *Repo) FindByName(ctx context.Context, name string) (domain.Terpene, error) {
	return r.queryOne(ctx,
		`SELECT `+columns+` FROM terpenes WHERE name = ? AND is_active = 1`, name)
}

// List returns active terpenes ordered by name.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domain.Terpene, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+columns+` FROM terpenes
		WHERE is_active = 1
		ORDER BY name
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list terpenes: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// Count returns the number of active terpenes.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM terpenes WHERE is_active = 1`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count terpenes: %w", err)
	}
	return n, nil
}

// Update applies a partial update and bumps updated_at. Only active
// terpenes are updatable.
func (r *Repo) Update(ctx context.Context, id string, p domain.TerpenePatch) (domain.Terpene, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)

	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Aroma != nil {
		sets = append(sets, "aroma = ?")
		args = append(args, *p.Aroma)
	}
	if p.Effects != nil {
		encoded, err := json.Marshal(emptyIfNil(*p.Effects))
		if err != nil {
			return domain.Terpene{}, fmt.Errorf("encode effects: %w", err)
		}
		sets = append(sets, "effects = ?")
		args = append(args, string(encoded))
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.BoilingPoint != nil {
		sets = append(sets, "boiling_point = ?")
		args = append(args, *p.BoilingPoint)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().Unix())
		args = append(args, id)

		res, err := r.db.ExecContext(ctx,
			`UPDATE terpenes SET `+strings.Join(sets, ", ")+` WHERE id = ? AND is_active = 1`,
			args...)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Terpene{}, fmt.Errorf("terpene rename: %w", domain.ErrAlreadyExists)
			}
			return domain.Terpene{}, fmt.Errorf("update terpene: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.Terpene{}, fmt.Errorf("terpene %s: %w", id, domain.ErrNotFound)
		}
	}

	return r.GetByID(ctx, id)
}

// SetVectorID records the vector store back-reference.
func (r *Repo) SetVectorID(ctx context.Context, id, vectorID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE terpenes SET vector_id = ? WHERE id = ?`, vectorID, id)
	if err != nil {
		return fmt.Errorf("set vector id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("terpene %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SoftDelete deactivates a terpene. Idempotent failure: deleting an
// already-inactive or missing terpene returns domain.ErrNotFound.
func (r *Repo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE terpenes SET is_active = 0, updated_at = ?
		WHERE id = ? AND is_active = 1`, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("soft delete terpene: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("terpene %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// LinkStrain adds a strain id to the terpene's strain list. Adding an
// already-linked strain is a no-op.
func (r *Repo) LinkStrain(ctx context.Context, id, strainID string) (domain.Terpene, error) {
	return r.mutateStrainLinks(ctx, id, func(ids []string) []string {
		for _, existing := range ids {
			if existing == strainID {
				return ids
			}
		}
		return append(ids, strainID)
	})
}

// UnlinkStrain removes a strain id from the terpene's strain list.
func (r *Repo) UnlinkStrain(ctx context.Context, id, strainID string) (domain.Terpene, error) {
	return r.mutateStrainLinks(ctx, id, func(ids []string) []string {
		out := ids[:0]
		for _, existing := range ids {
			if existing != strainID {
				out = append(out, existing)
			}
		}
		return out
	})
}

func (r *Repo) mutateStrainLinks(
	ctx context.Context, id string, mutate func([]string) []string,
) (domain.Terpene, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Terpene{}, err
	}
	if !t.IsActive {
		return domain.Terpene{}, fmt.Errorf("terpene %s: %w", id, domain.ErrNotFound)
	}

	t.StrainIDs = mutate(t.StrainIDs)
	encoded, err := json.Marshal(emptyIfNil(t.StrainIDs))
	if err != nil {
		return domain.Terpene{}, fmt.Errorf("encode strain ids: %w", err)
	}

	t.UpdatedAt = time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		UPDATE terpenes SET strain_ids = ?, updated_at = ? WHERE id = ?`,
		string(encoded), t.UpdatedAt.Unix(), id)
	if err != nil {
		return domain.Terpene{}, fmt.Errorf("update strain links: %w", err)
	}
	return t, nil
}

func (r *Repo) queryOne(ctx context.Context, query string, args ...any) (domain.Terpene, error) {
	var row row
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&row.ID, &row.Name, &row.Aroma, &row.Effects, &row.Description, &row.BoilingPoint,
		&row.StrainIDs, &row.VectorID, &row.IsActive, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Terpene{}, domain.ErrNotFound
		}
		return domain.Terpene{}, fmt.Errorf("query terpene: %w", err)
	}
	return row.toDomain()
}

func collect(rows *sql.Rows) ([]domain.Terpene, error) {
	var out []domain.Terpene
	for rows.Next() {
		var row row
		err := rows.Scan(
			&row.ID, &row.Name, &row.Aroma, &row.Effects, &row.Description, &row.BoilingPoint,
			&row.StrainIDs, &row.VectorID, &row.IsActive, &row.CreatedAt, &row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan terpene: %w", err)
		}
		t, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode terpene: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate terpenes: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
