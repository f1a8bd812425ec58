// Package event implements the behavior event pipeline: validate,
// classify, persist, mirror into the vector store, and dispatch to
// in-process subscribers.
package event

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/collections"
	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/metrics"
)

// Service is the event emission pipeline.
type Service struct {
	interactions InteractionStore
	vectors      VectorStore
	embedder     Embedder
	classifier   *Classifier
	bus          Dispatcher
	logger       *zap.Logger
	now          func() time.Time
}

// New creates the event pipeline.
func New(
	interactions InteractionStore,
	vectors VectorStore,
	embedder Embedder,
	classifier *Classifier,
	bus Dispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		interactions: interactions,
		vectors:      vectors,
		embedder:     embedder,
		classifier:   classifier,
		bus:          bus,
		logger:       logger,
		now:          time.Now,
	}
}

// Emit runs the full pipeline for one event. Validation failures are the
// only fatal outcome: persistence and vector-mirror failures are logged
// and counted, and the bus notification still goes out, so a degraded
// analytics store never blocks the product flow.
func (s *Service) Emit(ctx context.Context, e *domain.UserEvent) error {
	if err := e.Validate(); err != nil {
		metrics.EventsIngestedTotal.WithLabelValues(string(e.Category), "invalid").Inc()
		return err
	}
	e.Normalize(s.now().UTC())

	cls := s.classifier.Classify(ctx, e)
	if e.Intent == "" {
		e.Intent = cls.Intent
	}

	s.persist(ctx, e, &cls)
	s.mirror(ctx, e, &cls)

	s.bus.Emit(ctx, e)
	metrics.EventsIngestedTotal.WithLabelValues(string(e.Category), "ok").Inc()
	return nil
}

// EmitAsync runs Emit in a goroutine with a detached context, for
// emission from request handlers that must not wait on the pipeline.
func (s *Service) EmitAsync(e *domain.UserEvent) {
	go func() {
		if err := s.Emit(context.Background(), e); err != nil {
			s.logger.Warn("Async event emission failed",
				zap.String("event_type", e.EventType), zap.Error(err))
		}
	}()
}

func (s *Service) persist(ctx context.Context, e *domain.UserEvent, cls *domain.Classification) {
	err := s.interactions.Record(ctx, &domain.Interaction{
		ID:        e.ID,
		UserID:    e.UserID,
		SessionID: e.SessionID,
		EventType: e.EventType,
		Category:  e.Category,
		Intent:    cls.Intent,
		Timestamp: e.Timestamp,
	})
	if err != nil {
		s.logger.Warn("Failed to record interaction",
			zap.String("event_id", e.ID), zap.Error(err))
	}

	if e.SessionID != "" {
		if err := s.interactions.TouchSession(ctx, e.SessionID, e.UserID, e.Timestamp); err != nil {
			s.logger.Warn("Failed to touch session",
				zap.String("session_id", e.SessionID), zap.Error(err))
		}
	}
}

func (s *Service) mirror(ctx context.Context, e *domain.UserEvent, cls *domain.Classification) {
	if s.embedder == nil {
		metrics.EventsMirroredTotal.WithLabelValues("skipped").Inc()
		return
	}
	result, err := s.embedder.Embed(ctx, e.SearchText())
	if err != nil {
		metrics.EventsMirroredTotal.WithLabelValues("embed_error").Inc()
		s.logger.Warn("Failed to embed event",
			zap.String("event_id", e.ID), zap.Error(err))
		return
	}

	point := collections.EventPoint(e, cls, result.Embedding)
	if err := s.vectors.Upsert(ctx, collections.UserEvents, point); err != nil {
		metrics.EventsMirroredTotal.WithLabelValues("upsert_error").Inc()
		s.logger.Warn("Failed to mirror event into vector store",
			zap.String("event_id", e.ID), zap.Error(err))
		return
	}

	metrics.EventsMirroredTotal.WithLabelValues("ok").Inc()
}

// Emitter is the narrow interface product usecases use to fire events.
type Emitter interface {
	EmitAsync(e *domain.UserEvent)
}

// NopEmitter drops events; used where an emitter is optional.
type NopEmitter struct{}

// EmitAsync implements Emitter.
func (NopEmitter) EmitAsync(*domain.UserEvent) {}

var _ Emitter = (*Service)(nil)
