// Package analytics derives behavior insights from the event history
// mirrored in the vector store and the interaction log.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/collections"
	"github.com/leaf-cloud/straindex/internal/domain"
)

const (
	defaultSampleSize    = 1000
	defaultWindowDays    = 30
	defaultTimelineLimit = 50
	scrollPageSize       = 200
	similarOverFetch     = 20
	minPredictionEvents  = 5
	followUpWindow       = 5 * time.Minute
)

// Service implements the analytics read operations.
type Service struct {
	vectors       VectorStore
	interactions  InteractionStore
	logger        *zap.Logger
	sampleSize    int
	windowDays    int
	timelineLimit int
	now           func() time.Time
}

// New creates the analytics service.
func New(vectors VectorStore, interactions InteractionStore, logger *zap.Logger) *Service {
	return &Service{
		vectors:       vectors,
		interactions:  interactions,
		logger:        logger,
		sampleSize:    defaultSampleSize,
		windowDays:    defaultWindowDays,
		timelineLimit: defaultTimelineLimit,
		now:           time.Now,
	}
}

// WithLimits configures sampling and timeline caps.
func (s *Service) WithLimits(sampleSize, windowDays, timelineLimit int) *Service {
	if sampleSize > 0 {
		s.sampleSize = sampleSize
	}
	if windowDays > 0 {
		s.windowDays = windowDays
	}
	if timelineLimit > 0 {
		s.timelineLimit = timelineLimit
	}
	return s
}

// BehaviorPattern aggregates a user's recent events into category and
// intent percentages with a descending timeline.
func (s *Service) BehaviorPattern(ctx context.Context, userID string) (domain.BehaviorPattern, error) {
	events, err := s.recentInteractions(ctx, userID, false)
	if err != nil {
		return domain.BehaviorPattern{}, fmt.Errorf("load events for %s: %w", userID, err)
	}

	pattern := domain.BehaviorPattern{
		UserID:     userID,
		Categories: map[domain.Category]int{},
		Intents:    map[domain.Intent]int{},
	}
	if len(events) == 0 {
		return pattern, nil
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	pattern.TotalEvents = len(events)

	categoryCounts := map[domain.Category]int{}
	intentCounts := map[domain.Intent]int{}
	for _, e := range events {
		categoryCounts[e.Category]++
		if e.Intent != "" {
			intentCounts[e.Intent]++
		}
	}

	for cat, n := range categoryCounts {
		pattern.Categories[cat] = percent(n, len(events))
	}
	for intent, n := range intentCounts {
		pattern.Intents[intent] = percent(n, len(events))
	}

	// Dominant: highest share; ties resolved by which category appears
	// first in the timestamp-descending event order.
	best := -1
	for _, e := range events {
		if p := pattern.Categories[e.Category]; p > best {
			best = p
			pattern.DominantCategory = e.Category
		}
	}

	limit := s.timelineLimit
	if limit > len(events) {
		limit = len(events)
	}
	pattern.Timeline = make([]domain.TimelineEntry, 0, limit)
	for _, e := range events[:limit] {
		pattern.Timeline = append(pattern.Timeline, domain.TimelineEntry{
			EventType: e.EventType,
			Category:  e.Category,
			Timestamp: e.Timestamp,
		})
	}

	return pattern, nil
}

// SimilarUsers finds users whose event vectors cluster around the
// subject's centroid. The subject is never included.
func (s *Service) SimilarUsers(ctx context.Context, userID string, limit int) ([]domain.SimilarUser, error) {
	if limit <= 0 {
		limit = 5
	}

	points, err := s.scrollUserPoints(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("load event vectors for %s: %w", userID, err)
	}
	if len(points) == 0 {
		return []domain.SimilarUser{}, nil
	}

	ownCategories := map[domain.Category]struct{}{}
	for _, p := range points {
		ownCategories[domain.Category(p.Payload["category"])] = struct{}{}
	}

	center := centroid(points)
	hits, err := s.vectors.Search(ctx, collections.UserEvents, center, nil, limit*similarOverFetch)
	if err != nil {
		return nil, fmt.Errorf("search similar events: %w", err)
	}

	type bucket struct {
		sum        float64
		count      int
		categories map[domain.Category]struct{}
	}
	byUser := map[string]*bucket{}
	for _, hit := range hits {
		other := hit.Payload["user_id"]
		if other == "" || other == userID {
			continue
		}
		b := byUser[other]
		if b == nil {
			b = &bucket{categories: map[domain.Category]struct{}{}}
			byUser[other] = b
		}
		b.sum += hit.Score
		b.count++
		if cat := domain.Category(hit.Payload["category"]); cat != "" {
			b.categories[cat] = struct{}{}
		}
	}

	out := make([]domain.SimilarUser, 0, len(byUser))
	for other, b := range byUser {
		shared := make([]domain.Category, 0, len(b.categories))
		for _, cat := range domain.Categories {
			_, ours := ownCategories[cat]
			_, theirs := b.categories[cat]
			if ours && theirs {
				shared = append(shared, cat)
			}
		}
		out = append(out, domain.SimilarUser{
			UserID:           other,
			Similarity:       round2(b.sum / float64(b.count)),
			SharedCategories: shared,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Engagement summarizes a user's activity over the lookback window.
func (s *Service) Engagement(ctx context.Context, userID string) (domain.EngagementMetrics, error) {
	since := s.now().UTC().AddDate(0, 0, -s.windowDays)

	stats, err := s.interactions.Engagement(ctx, userID, since)
	if err != nil {
		return domain.EngagementMetrics{}, fmt.Errorf("engagement stats for %s: %w", userID, err)
	}

	m := domain.EngagementMetrics{
		UserID:       userID,
		WindowDays:   s.windowDays,
		Interactions: stats.Interactions,
		Sessions:     stats.Sessions,
		ActiveDays:   stats.ActiveDays,
	}
	if stats.Sessions > 0 {
		m.InteractionsPerSession = round2(float64(stats.Interactions) / float64(stats.Sessions))
	}
	m.EngagementRate = round2(float64(stats.ActiveDays) / float64(s.windowDays) * 100)
	return m, nil
}

// PredictNextAction is a naive nearest-neighbor lookahead over the
// user's own history. Unlike the query-class operations it degrades:
// any failure or thin history yields the zero-confidence prediction.
func (s *Service) PredictNextAction(ctx context.Context, userID string) domain.NextActionPrediction {
	zero := domain.NextActionPrediction{
		UserID:        userID,
		LikelyActions: []domain.LikelyAction{},
	}

	points, err := s.scrollUserPoints(ctx, userID, true)
	if err != nil {
		s.logger.Warn("Next-action prediction degraded",
			zap.String("user_id", userID), zap.Error(err))
		return zero
	}
	if len(points) < minPredictionEvents {
		return zero
	}

	history := make([]domain.Interaction, 0, len(points))
	vectorsByID := make(map[string][]float32, len(points))
	for _, p := range points {
		history = append(history, collections.EventFromPayload(p.ID, p.Payload))
		vectorsByID[p.ID] = p.Vector
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})
	latest := history[0]

	neighbors, err := s.vectors.Search(ctx, collections.UserEvents,
		vectorsByID[latest.ID], domain.Filter{"user_id": userID}, minPredictionEvents*2)
	if err != nil {
		s.logger.Warn("Next-action prediction degraded",
			zap.String("user_id", userID), zap.Error(err))
		return zero
	}

	// Tally what the user did within 5 minutes after each similar moment.
	tally := map[string]int{}
	total := 0
	for _, n := range neighbors {
		if n.ID == latest.ID {
			continue
		}
		anchor := collections.EventFromPayload(n.ID, n.Payload)
		for i := len(history) - 1; i >= 0; i-- {
			e := history[i]
			if e.ID == anchor.ID {
				continue
			}
			if e.Timestamp.After(anchor.Timestamp) &&
				e.Timestamp.Sub(anchor.Timestamp) <= followUpWindow {
				tally[e.EventType]++
				total++
			}
		}
	}
	if total == 0 {
		return zero
	}

	actions := make([]domain.LikelyAction, 0, len(tally))
	for eventType, n := range tally {
		actions = append(actions, domain.LikelyAction{
			EventType:   eventType,
			Probability: round2(float64(n) / float64(total)),
		})
	}
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].Probability != actions[j].Probability {
			return actions[i].Probability > actions[j].Probability
		}
		return actions[i].EventType < actions[j].EventType
	})
	if len(actions) > 5 {
		actions = actions[:5]
	}

	return domain.NextActionPrediction{
		UserID:        userID,
		LikelyActions: actions,
		Confidence:    actions[0].Probability,
	}
}

// Journey returns the user's recent interactions from the document
// store, newest first.
func (s *Service) Journey(ctx context.Context, userID string, limit int) ([]domain.Interaction, error) {
	if limit <= 0 || limit > s.timelineLimit {
		limit = s.timelineLimit
	}
	since := s.now().UTC().AddDate(0, 0, -s.windowDays)

	out, err := s.interactions.ListRecent(ctx, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("journey for %s: %w", userID, err)
	}
	if out == nil {
		out = []domain.Interaction{}
	}
	return out, nil
}

// recentInteractions loads the user's events from the vector store,
// restricted to the lookback window.
func (s *Service) recentInteractions(
	ctx context.Context, userID string, withVectors bool,
) ([]domain.Interaction, error) {
	points, err := s.scrollUserPoints(ctx, userID, withVectors)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UTC().AddDate(0, 0, -s.windowDays)
	out := make([]domain.Interaction, 0, len(points))
	for _, p := range points {
		e := collections.EventFromPayload(p.ID, p.Payload)
		if e.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) scrollUserPoints(
	ctx context.Context, userID string, withVectors bool,
) ([]domain.Point, error) {
	filter := domain.Filter{"user_id": userID}

	var out []domain.Point
	cursor := ""
	for {
		page, next, err := s.vectors.Scroll(ctx, collections.UserEvents,
			cursor, filter, scrollPageSize, withVectors)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if next == "" || len(out) >= s.sampleSize {
			break
		}
		cursor = next
	}
	if len(out) > s.sampleSize {
		out = out[:s.sampleSize]
	}
	return out, nil
}

func centroid(points []domain.Point) []float32 {
	var dim int
	for _, p := range points {
		if len(p.Vector) > 0 {
			dim = len(p.Vector)
			break
		}
	}
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	n := 0
	for _, p := range points {
		if len(p.Vector) != dim {
			continue
		}
		for i, v := range p.Vector {
			sum[i] += float64(v)
		}
		n++
	}
	if n == 0 {
		return nil
	}

	out := make([]float32, dim)
	for i, v := range sum {
		out[i] = float32(v / float64(n))
	}
	return out
}

func percent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
