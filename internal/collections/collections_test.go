package collections

import (
	"testing"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

func TestUserEventsDescriptor(t *testing.T) {
	desc := UserEventsDescriptor(1536)

	if desc.Name != UserEvents {
		t.Errorf("name = %q, want %q", desc.Name, UserEvents)
	}
	if desc.Dimensions != 1536 {
		t.Errorf("dimensions = %d, want 1536", desc.Dimensions)
	}
	if desc.Distance != domain.DistanceCosine {
		t.Errorf("distance = %q, want cosine", desc.Distance)
	}

	kinds := make(map[string]domain.FieldKind, len(desc.Fields))
	for _, f := range desc.Fields {
		kinds[f.Name] = f.Kind
	}
	for _, name := range []string{"user_id", "event_type", "category", "intent", "session_id", "source"} {
		if kinds[name] != domain.FieldTag {
			t.Errorf("field %s should be a tag", name)
		}
	}
	if kinds["timestamp"] != domain.FieldNumeric {
		t.Error("timestamp should be numeric")
	}
}

func TestEventPoint_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := &domain.UserEvent{
		ID:        "evt-1",
		UserID:    "user-1",
		EventType: domain.EventTerpeneViewed,
		Category:  domain.CategoryLearning,
		SessionID: "sess-1",
		Source:    "web",
		Timestamp: ts,
	}
	cls := &domain.Classification{
		Intent:     domain.IntentResearch,
		Sentiment:  domain.SentimentPositive,
		Complexity: domain.ComplexityMedium,
		Engagement: 7,
		Tags:       []string{"terpene", "education"},
	}

	point := EventPoint(event, cls, []float32{0.1, 0.2})

	if point.ID != "evt-1" {
		t.Errorf("point id = %q, want evt-1", point.ID)
	}
	if point.Payload["tags"] != "terpene,education" {
		t.Errorf("tags = %q", point.Payload["tags"])
	}
	if point.Payload["engagement"] != "7" {
		t.Errorf("engagement = %q", point.Payload["engagement"])
	}

	got := EventFromPayload(point.ID, point.Payload)
	if got.UserID != "user-1" || got.EventType != domain.EventTerpeneViewed {
		t.Errorf("unexpected interaction: %+v", got)
	}
	if got.Category != domain.CategoryLearning || got.Intent != domain.IntentResearch {
		t.Errorf("unexpected category/intent: %+v", got)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, ts)
	}
	if got.SessionID != "sess-1" {
		t.Errorf("session = %q", got.SessionID)
	}
}

func TestEventPoint_OptionalFieldsOmitted(t *testing.T) {
	event := &domain.UserEvent{
		ID:        "evt-2",
		UserID:    "user-1",
		EventType: domain.EventSearchPerformed,
		Category:  domain.CategoryBrowsing,
		Timestamp: time.Now(),
	}
	cls := &domain.Classification{Intent: domain.IntentExplore, Engagement: 3}

	point := EventPoint(event, cls, nil)

	if _, ok := point.Payload["session_id"]; ok {
		t.Error("empty session_id should be omitted")
	}
	if _, ok := point.Payload["source"]; ok {
		t.Error("empty source should be omitted")
	}
	if _, ok := point.Payload["tags"]; ok {
		t.Error("empty tags should be omitted")
	}
}

func TestEventFromPayload_MalformedFields(t *testing.T) {
	got := EventFromPayload("evt-3", map[string]string{
		"user_id":   "user-9",
		"timestamp": "not-a-number",
	})

	if got.UserID != "user-9" {
		t.Errorf("user = %q", got.UserID)
	}
	if !got.Timestamp.Equal(time.Unix(0, 0).UTC()) {
		t.Errorf("expected epoch for malformed timestamp, got %v", got.Timestamp)
	}
}

func TestTerpenePoint(t *testing.T) {
	terp := &domain.Terpene{
		ID:      "terp-1",
		Name:    "Myrcene",
		Aroma:   "earthy",
		Effects: []string{"sedative"},
	}

	point := TerpenePoint(terp, []float32{0.5})

	if point.ID != "terp-1" {
		t.Errorf("id = %q", point.ID)
	}
	if point.Payload["name"] != "Myrcene" || point.Payload["aroma"] != "earthy" {
		t.Errorf("unexpected payload: %v", point.Payload)
	}
	if point.Payload["text"] == "" {
		t.Error("expected search text in payload")
	}
}
