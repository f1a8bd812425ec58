package event

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/domain"
)

func classifyEvent() *domain.UserEvent {
	return &domain.UserEvent{
		ID:        "evt-1",
		UserID:    "user-1",
		EventType: domain.EventTerpeneViewed,
		Category:  domain.CategoryLearning,
		Metadata:  map[string]string{"terpene": "limonene"},
	}
}

func TestClassify_FromProvider(t *testing.T) {
	chat := &mockChat{
		completeFn: func(_ context.Context, _ domain.ChatPrompt) (domain.ChatResult, error) {
			return domain.ChatResult{Content: `{"category":"learning","intent":"compare",` +
				`"sentiment":"positive","complexity":"high","engagement":9,"tags":["a","b"]}`}, nil
		},
	}
	c := NewClassifier(chat, zap.NewNop())

	cls := c.Classify(context.Background(), classifyEvent())

	if cls.Intent != domain.IntentCompare || cls.Sentiment != domain.SentimentPositive {
		t.Errorf("unexpected classification: %+v", cls)
	}
	if cls.Complexity != domain.ComplexityHigh || cls.Engagement != 9 {
		t.Errorf("unexpected classification: %+v", cls)
	}
	if len(cls.Tags) != 2 {
		t.Errorf("tags = %v", cls.Tags)
	}
}

func TestClassify_CodeFencedJSON(t *testing.T) {
	chat := &mockChat{
		completeFn: func(_ context.Context, _ domain.ChatPrompt) (domain.ChatResult, error) {
			return domain.ChatResult{Content: "```json\n{\"category\":\"learning\",\"intent\":\"research\"," +
				"\"sentiment\":\"neutral\",\"complexity\":\"low\",\"engagement\":4,\"tags\":[]}\n```"}, nil
		},
	}
	c := NewClassifier(chat, zap.NewNop())

	cls := c.Classify(context.Background(), classifyEvent())
	if cls.Intent != domain.IntentResearch || cls.Engagement != 4 {
		t.Errorf("fenced JSON not parsed: %+v", cls)
	}
}

func TestClassify_ProviderErrorFallsBack(t *testing.T) {
	chat := &mockChat{
		completeFn: func(_ context.Context, _ domain.ChatPrompt) (domain.ChatResult, error) {
			return domain.ChatResult{}, errors.New("provider down")
		},
	}
	c := NewClassifier(chat, zap.NewNop())

	cls := c.Classify(context.Background(), classifyEvent())

	// Deterministic fallback for a learning event.
	if cls.Category != domain.CategoryLearning || cls.Intent != domain.IntentResearch {
		t.Errorf("unexpected fallback: %+v", cls)
	}
	if cls.Sentiment != domain.SentimentNeutral {
		t.Errorf("fallback sentiment = %q", cls.Sentiment)
	}
	if cls.Engagement < 1 || cls.Engagement > 10 {
		t.Errorf("engagement out of range: %d", cls.Engagement)
	}
}

func TestClassify_GarbageResponseFallsBack(t *testing.T) {
	chat := &mockChat{
		completeFn: func(_ context.Context, _ domain.ChatPrompt) (domain.ChatResult, error) {
			return domain.ChatResult{Content: "Sure! This event looks like a learning event."}, nil
		},
	}
	c := NewClassifier(chat, zap.NewNop())

	cls := c.Classify(context.Background(), classifyEvent())
	if cls.Category != domain.CategoryLearning {
		t.Errorf("unexpected fallback: %+v", cls)
	}
}

func TestClassify_NilChatUsesFallback(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	e := classifyEvent()
	e.Category = domain.CategoryShopping
	cls := c.Classify(context.Background(), e)

	if cls.Intent != domain.IntentPurchase {
		t.Errorf("shopping fallback intent = %q, want purchase", cls.Intent)
	}
}

func TestClassify_CacheHitSkipsProvider(t *testing.T) {
	chat := &mockChat{}
	c := NewClassifier(chat, zap.NewNop())

	first := c.Classify(context.Background(), classifyEvent())
	second := c.Classify(context.Background(), classifyEvent())

	if chat.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", chat.calls)
	}
	if first.Intent != second.Intent || first.Engagement != second.Engagement {
		t.Errorf("cache returned different classification: %+v vs %+v", first, second)
	}
}

func TestClassify_CacheKeyedByContent(t *testing.T) {
	chat := &mockChat{}
	c := NewClassifier(chat, zap.NewNop())

	c.Classify(context.Background(), classifyEvent())

	other := classifyEvent()
	other.Metadata = map[string]string{"terpene": "pinene"}
	c.Classify(context.Background(), other)

	if chat.calls != 2 {
		t.Errorf("different metadata must miss the cache, got %d calls", chat.calls)
	}

	// Same content from a different user still hits.
	sameContent := classifyEvent()
	sameContent.UserID = "user-2"
	c.Classify(context.Background(), sameContent)
	if chat.calls != 2 {
		t.Errorf("same content should hit the cache, got %d calls", chat.calls)
	}
}

func TestClassify_EngagementClamped(t *testing.T) {
	chat := &mockChat{
		completeFn: func(_ context.Context, _ domain.ChatPrompt) (domain.ChatResult, error) {
			return domain.ChatResult{Content: `{"category":"learning","intent":"research",` +
				`"sentiment":"neutral","complexity":"low","engagement":42,"tags":[]}`}, nil
		},
	}
	c := NewClassifier(chat, zap.NewNop())

	cls := c.Classify(context.Background(), classifyEvent())
	if cls.Engagement != 10 {
		t.Errorf("engagement = %d, want clamped to 10", cls.Engagement)
	}
}

func TestClassify_BogusEnumFieldsRepaired(t *testing.T) {
	chat := &mockChat{
		completeFn: func(_ context.Context, _ domain.ChatPrompt) (domain.ChatResult, error) {
			return domain.ChatResult{Content: `{"category":"gaming","intent":"",` +
				`"sentiment":"","complexity":"","engagement":5,"tags":[]}`}, nil
		},
	}
	c := NewClassifier(chat, zap.NewNop())

	cls := c.Classify(context.Background(), classifyEvent())

	if cls.Category != domain.CategoryLearning {
		t.Errorf("invalid category must fall back to the event's, got %q", cls.Category)
	}
	if cls.Intent != domain.IntentResearch {
		t.Errorf("empty intent must be derived, got %q", cls.Intent)
	}
	if cls.Sentiment != domain.SentimentNeutral || cls.Complexity != domain.ComplexityLow {
		t.Errorf("empty enums must default: %+v", cls)
	}
}
