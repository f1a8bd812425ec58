package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups user events by broad behavior area.
type Category string

const (
	CategoryLearning Category = "learning"
	CategoryShopping Category = "shopping"
	CategoryBrowsing Category = "browsing"
	CategorySupport  Category = "support"
)

// Categories lists all known event categories.
var Categories = []Category{CategoryLearning, CategoryShopping, CategoryBrowsing, CategorySupport}

// IsValid reports whether the category is one of the known values.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Intent is the optional inferred goal behind a user event.
type Intent string

const (
	IntentResearch Intent = "research"
	IntentPurchase Intent = "purchase"
	IntentCompare  Intent = "compare"
	IntentExplore  Intent = "explore"
)

// Event types are namespaced strings: "<subject>_<action>".
const (
	EventQueryExecuted   = "query_executed"
	EventTerpeneViewed   = "terpene_viewed"
	EventTerpeneCreated  = "terpene_created"
	EventStrainViewed    = "strain_viewed"
	EventSearchPerformed = "search_performed"
	EventAnswerGenerated = "answer_generated"
)

// UserEvent is a single behavioral event. Immutable once emitted: persisted
// as a historical record and mirrored as a vector-store point.
type UserEvent struct {
	ID        string
	UserID    string
	EventType string
	Category  Category
	Intent    Intent
	Metadata  map[string]string
	Timestamp time.Time
	SessionID string
	Source    string
}

// Validate fails fast before any external call is made.
func (e *UserEvent) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("user id is required: %w", ErrValidation)
	}
	if e.EventType == "" {
		return fmt.Errorf("event type is required: %w", ErrValidation)
	}
	if e.Category == "" {
		return fmt.Errorf("category is required: %w", ErrValidation)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("unknown category %q: %w", e.Category, ErrValidation)
	}
	return nil
}

// Normalize fills generated fields: ID (uuid) and Timestamp (now) when absent.
func (e *UserEvent) Normalize(now time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
}

// Sentiment of a classified event.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Complexity of a classified event.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Classification is derived from a UserEvent by an external classifier call
// or a deterministic keyword fallback. Never persisted as a source of truth.
type Classification struct {
	Category   Category
	Intent     Intent
	Sentiment  Sentiment
	Complexity Complexity
	Engagement int // 1..10
	Tags       []string
}

// ClampEngagement forces the engagement level into the 1..10 range.
func (c *Classification) ClampEngagement() {
	if c.Engagement < 1 {
		c.Engagement = 1
	}
	if c.Engagement > 10 {
		c.Engagement = 10
	}
}

// SearchText renders the event into the string that gets embedded.
func (e *UserEvent) SearchText() string {
	parts := []string{e.EventType, string(e.Category)}
	if e.Intent != "" {
		parts = append(parts, string(e.Intent))
	}
	// Sorted for a stable embedding cache key.
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+": "+e.Metadata[k])
	}
	return strings.Join(parts, " | ")
}
