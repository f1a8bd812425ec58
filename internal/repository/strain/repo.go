// Package strain persists strain documents in the sqlite document store.
// Same soft-delete contract as the terpene repository.
package strain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

const columns = `id, name, type, thc, cbd, description, is_active, created_at, updated_at`

// Repo implements the strain usecase store.
type Repo struct {
	db *sql.DB
}

// New creates a strain repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a new strain. An active strain with the same name
// yields domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, s *domain.Strain) error {
	isActive := 0
	if s.IsActive {
		isActive = 1
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO strains (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, string(s.Type), s.THC, s.CBD, s.Description,
		isActive, s.CreatedAt.Unix(), s.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("strain %q: %w", s.Name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert strain: %w", err)
	}
	return nil
}

// GetByID returns a strain by id, including soft-deleted ones.
func (r *Repo) GetByID(ctx context.Context, id string) (domain.Strain, error) {
	return r.queryOne(ctx, `SELECT `+columns+` FROM strains WHERE id = ?`, id)
}

// FindByName returns an active strain by exact name.
func (r *Repo) FindByName(ctx context.Context, name string) (domain.Strain, error) {
	return r.queryOne(ctx,
		`SELECT `+columns+` FROM strains WHERE name = ? AND is_active = 1`, name)
}

// List returns active strains ordered by name.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domain.Strain, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+columns+` FROM strains
		WHERE is_active = 1
		ORDER BY name
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list strains: %w", err)
	}
	defer rows.Close()

	var out []domain.Strain
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strains: %w", err)
	}
	return out, nil
}

// Count returns the number of active strains.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM strains WHERE is_active = 1`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count strains: %w", err)
	}
	return n, nil
}

// GetByIDs returns the active strains among the given ids, preserving
// input order. Missing or inactive ids are silently skipped.
func (r *Repo) GetByIDs(ctx context.Context, ids []string) ([]domain.Strain, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+columns+` FROM strains
		WHERE id IN (`+placeholders+`) AND is_active = 1`, args...)
	if err != nil {
		return nil, fmt.Errorf("get strains by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Strain, len(ids))
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strains: %w", err)
	}

	out := make([]domain.Strain, 0, len(byID))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Update applies a partial update and bumps updated_at.
func (r *Repo) Update(ctx context.Context, id string, p domain.StrainPatch) (domain.Strain, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*p.Type))
	}
	if p.THC != nil {
		sets = append(sets, "thc = ?")
		args = append(args, *p.THC)
	}
	if p.CBD != nil {
		sets = append(sets, "cbd = ?")
		args = append(args, *p.CBD)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().Unix())
		args = append(args, id)

		res, err := r.db.ExecContext(ctx,
			`UPDATE strains SET `+strings.Join(sets, ", ")+` WHERE id = ? AND is_active = 1`,
			args...)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Strain{}, fmt.Errorf("strain rename: %w", domain.ErrAlreadyExists)
			}
			return domain.Strain{}, fmt.Errorf("update strain: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.Strain{}, fmt.Errorf("strain %s: %w", id, domain.ErrNotFound)
		}
	}

	return r.GetByID(ctx, id)
}

// SoftDelete deactivates a strain.
func (r *Repo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE strains SET is_active = 0, updated_at = ?
		WHERE id = ? AND is_active = 1`, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("soft delete strain: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("strain %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scan(s rowScanner) (domain.Strain, error) {
	var (
		out              domain.Strain
		strainType       string
		isActive         int64
		created, updated int64
	)
	err := s.Scan(&out.ID, &out.Name, &strainType, &out.THC, &out.CBD,
		&out.Description, &isActive, &created, &updated)
	if err != nil {
		return domain.Strain{}, fmt.Errorf("scan strain: %w", err)
	}
	out.Type = domain.StrainType(strainType)
	out.IsActive = isActive == 1
	out.CreatedAt = time.Unix(created, 0).UTC()
	out.UpdatedAt = time.Unix(updated, 0).UTC()
	return out, nil
}

func (r *Repo) queryOne(ctx context.Context, query string, args ...any) (domain.Strain, error) {
	s, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Strain{}, domain.ErrNotFound
		}
		return domain.Strain{}, err
	}
	return s, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
