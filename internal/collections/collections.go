// Package collections defines the vector collections the service owns:
// their descriptors (schema registered with the vector store) and the
// payload codecs that map domain objects to flat point payloads and back.
package collections

import (
	"strconv"
	"strings"
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
)

// Collection names.
const (
	UserEvents = "user_events"
	Terpenes   = "terpenes"
)

// UserEventsDescriptor describes the user behavior event collection.
// Filterable fields are tags; timestamp is numeric for range scans.
func UserEventsDescriptor(dimensions int) domain.CollectionDescriptor {
	return domain.CollectionDescriptor{
		Name:       UserEvents,
		Dimensions: dimensions,
		Distance:   domain.DistanceCosine,
		Fields: []domain.PayloadField{
			{Name: "user_id", Kind: domain.FieldTag},
			{Name: "event_type", Kind: domain.FieldTag},
			{Name: "category", Kind: domain.FieldTag},
			{Name: "intent", Kind: domain.FieldTag},
			{Name: "session_id", Kind: domain.FieldTag},
			{Name: "source", Kind: domain.FieldTag},
			{Name: "timestamp", Kind: domain.FieldNumeric},
		},
	}
}

// TerpenesDescriptor describes the terpene knowledge collection.
func TerpenesDescriptor(dimensions int) domain.CollectionDescriptor {
	return domain.CollectionDescriptor{
		Name:       Terpenes,
		Dimensions: dimensions,
		Distance:   domain.DistanceCosine,
		Fields: []domain.PayloadField{
			{Name: "name", Kind: domain.FieldTag},
			{Name: "aroma", Kind: domain.FieldTag},
		},
	}
}

// EventPoint builds the vector point for a classified user event.
func EventPoint(e *domain.UserEvent, cls *domain.Classification, vector []float32) domain.Point {
	payload := map[string]string{
		"user_id":    e.UserID,
		"event_type": e.EventType,
		"category":   string(e.Category),
		"intent":     string(cls.Intent),
		"timestamp":  strconv.FormatInt(e.Timestamp.Unix(), 10),
		"sentiment":  string(cls.Sentiment),
		"complexity": string(cls.Complexity),
		"engagement": strconv.Itoa(cls.Engagement),
		"text":       e.SearchText(),
	}
	if e.SessionID != "" {
		payload["session_id"] = e.SessionID
	}
	if e.Source != "" {
		payload["source"] = e.Source
	}
	if len(cls.Tags) > 0 {
		payload["tags"] = strings.Join(cls.Tags, ",")
	}
	return domain.Point{ID: e.ID, Vector: vector, Payload: payload}
}

// EventFromPayload rebuilds an interaction view from a stored event point.
// Unknown or missing fields yield zero values, never errors: old points
// written by previous versions must stay readable.
func EventFromPayload(id string, payload map[string]string) domain.Interaction {
	ts, _ := strconv.ParseInt(payload["timestamp"], 10, 64)

	return domain.Interaction{
		ID:        id,
		UserID:    payload["user_id"],
		EventType: payload["event_type"],
		Category:  domain.Category(payload["category"]),
		Intent:    domain.Intent(payload["intent"]),
		SessionID: payload["session_id"],
		Timestamp: time.Unix(ts, 0).UTC(),
	}
}

// TerpenePoint builds the vector point mirroring a terpene document.
func TerpenePoint(t *domain.Terpene, vector []float32) domain.Point {
	return domain.Point{
		ID:     t.ID,
		Vector: vector,
		Payload: map[string]string{
			"name":  t.Name,
			"aroma": t.Aroma,
			"text":  t.SearchText(),
		},
	}
}
