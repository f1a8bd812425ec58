package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/domain"
)

func testEvent() *domain.UserEvent {
	return &domain.UserEvent{
		ID:        "evt-1",
		UserID:    "user-1",
		EventType: domain.EventTerpeneViewed,
		Category:  domain.CategoryLearning,
		Timestamp: time.Now(),
	}
}

func TestEmit_FansOutExactlyThreePatterns(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got []string
	record := func(label string) Handler {
		return func(_ context.Context, _ *domain.UserEvent) error {
			got = append(got, label)
			return nil
		}
	}

	bus.Subscribe(domain.EventTerpeneViewed, record("exact"))
	bus.Subscribe(string(domain.CategoryLearning), record("category"))
	bus.Subscribe(Wildcard, record("wildcard"))

	bus.Emit(context.Background(), testEvent())

	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d: %v", len(got), got)
	}
	if got[0] != "exact" || got[1] != "category" || got[2] != "wildcard" {
		t.Errorf("unexpected dispatch order: %v", got)
	}
}

func TestEmit_UnrelatedPatternsNotNotified(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var called bool
	bus.Subscribe(domain.EventStrainViewed, func(_ context.Context, _ *domain.UserEvent) error {
		called = true
		return nil
	})
	bus.Subscribe(string(domain.CategoryShopping), func(_ context.Context, _ *domain.UserEvent) error {
		called = true
		return nil
	})

	bus.Emit(context.Background(), testEvent())

	if called {
		t.Error("handlers for unrelated patterns must not fire")
	}
}

func TestEmit_MultipleHandlersPerPattern(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var count int
	for i := 0; i < 3; i++ {
		bus.Subscribe(Wildcard, func(_ context.Context, _ *domain.UserEvent) error {
			count++
			return nil
		})
	}

	bus.Emit(context.Background(), testEvent())

	if count != 3 {
		t.Errorf("expected all 3 wildcard handlers to fire, got %d", count)
	}
}

func TestEmit_HandlerErrorDoesNotStopSiblings(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var secondCalled bool
	bus.Subscribe(Wildcard, func(_ context.Context, _ *domain.UserEvent) error {
		return errors.New("handler broke")
	})
	bus.Subscribe(Wildcard, func(_ context.Context, _ *domain.UserEvent) error {
		secondCalled = true
		return nil
	})

	bus.Emit(context.Background(), testEvent())

	if !secondCalled {
		t.Error("sibling handler must run after a failed handler")
	}
}

func TestEmit_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var wildcardCalled bool
	bus.Subscribe(domain.EventTerpeneViewed, func(_ context.Context, _ *domain.UserEvent) error {
		panic("boom")
	})
	bus.Subscribe(Wildcard, func(_ context.Context, _ *domain.UserEvent) error {
		wildcardCalled = true
		return nil
	})

	bus.Emit(context.Background(), testEvent())

	if !wildcardCalled {
		t.Error("panic in one handler must not break later dispatches")
	}
}

func TestEmitAsync_DeliversEventually(t *testing.T) {
	bus := NewBus(zap.NewNop())

	done := make(chan struct{})
	bus.Subscribe(Wildcard, func(_ context.Context, _ *domain.UserEvent) error {
		close(done)
		return nil
	})

	bus.EmitAsync(testEvent())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async emit never delivered")
	}
}
