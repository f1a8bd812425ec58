// Package interaction keeps the historical record of user events:
// an append-only interactions log plus a rolling per-session aggregate.
package interaction

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

const defaultSessionGap = 30 * time.Minute

// Repo implements the analytics/event usecase interaction store.
type Repo struct {
	db         *sql.DB
	sessionGap time.Duration
}

// New creates an interaction repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db, sessionGap: defaultSessionGap}
}

// WithSessionGap sets the inactivity gap that splits session-less
// interactions into implied sessions for engagement counting.
func (r *Repo) WithSessionGap(d time.Duration) *Repo {
	if d > 0 {
		r.sessionGap = d
	}
	return r
}

// Record appends one interaction.
func (r *Repo) Record(ctx context.Context, in *domain.Interaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO interactions (id, user_id, session_id, event_type, category, intent, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.SessionID, in.EventType,
		string(in.Category), string(in.Intent), in.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// TouchSession upserts the per-session aggregate: first touch creates
// the row, later touches bump last_activity and the interaction count.
func (r *Repo) TouchSession(ctx context.Context, sessionID, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, last_activity, interactions)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			last_activity = excluded.last_activity,
			interactions  = interactions + 1`,
		sessionID, userID, at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// EngagementStats aggregates a user's activity since the given time.
type EngagementStats struct {
	Interactions int
	Sessions     int
	ActiveDays   int
}

// Engagement returns interaction count, session count and distinct
// active calendar days (UTC) in the window. Interactions without a
// session id are segmented into implied sessions split on inactivity
// gaps longer than the configured session gap.
func (r *Repo) Engagement(ctx context.Context, userID string, since time.Time) (EngagementStats, error) {
	var stats EngagementStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT NULLIF(session_id, '')),
			COUNT(DISTINCT date(timestamp, 'unixepoch'))
		FROM interactions
		WHERE user_id = ? AND timestamp >= ?`,
		userID, since.Unix(),
	).Scan(&stats.Interactions, &stats.Sessions, &stats.ActiveDays)
	if err != nil {
		return EngagementStats{}, fmt.Errorf("engagement stats: %w", err)
	}

	implied, err := r.impliedSessions(ctx, userID, since)
	if err != nil {
		return EngagementStats{}, err
	}
	stats.Sessions += implied

	return stats, nil
}

// impliedSessions counts gap-separated runs of session-less interactions.
func (r *Repo) impliedSessions(ctx context.Context, userID string, since time.Time) (int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp
		FROM interactions
		WHERE user_id = ? AND timestamp >= ? AND session_id = ''
		ORDER BY timestamp ASC`,
		userID, since.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("implied sessions: %w", err)
	}
	defer rows.Close()

	var (
		count int
		prev  int64
	)
	gap := int64(r.sessionGap / time.Second)
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return 0, fmt.Errorf("scan timestamp: %w", err)
		}
		if count == 0 || ts-prev > gap {
			count++
		}
		prev = ts
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate timestamps: %w", err)
	}
	return count, nil
}

// ListRecent returns a user's interactions since the given time,
// newest first, capped at limit.
func (r *Repo) ListRecent(
	ctx context.Context, userID string, since time.Time, limit int,
) ([]domain.Interaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, session_id, event_type, category, intent, timestamp
		FROM interactions
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC
		LIMIT ?`, userID, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		var (
			in               domain.Interaction
			category, intent string
			ts               int64
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.SessionID, &in.EventType,
			&category, &intent, &ts); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Category = domain.Category(category)
		in.Intent = domain.Intent(intent)
		in.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}
