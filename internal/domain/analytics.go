package domain

import "time"

// Interaction is one event occurrence per user/session, kept as a
// historical record in the document store.
type Interaction struct {
	ID        string
	UserID    string
	SessionID string
	EventType string
	Category  Category
	Intent    Intent
	Timestamp time.Time
}

// Session is a rolling aggregate upserted per (user, session) pair.
type Session struct {
	ID           string
	UserID       string
	LastActivity time.Time
	Interactions int
}

// TimelineEntry is one event in a user's behavior timeline.
type TimelineEntry struct {
	EventType string
	Category  Category
	Timestamp time.Time
}

// BehaviorPattern aggregates a user's recent events into percentages.
// Categories with zero events are omitted.
type BehaviorPattern struct {
	UserID           string
	TotalEvents      int
	Categories       map[Category]int // percent, rounded to nearest int
	Intents          map[Intent]int   // percent, rounded to nearest int
	DominantCategory Category
	Timeline         []TimelineEntry // timestamp descending
}

// SimilarUser is another user ranked by average vector similarity.
type SimilarUser struct {
	UserID           string
	Similarity       float64 // average score over matched events
	SharedCategories []Category
}

// EngagementMetrics summarizes activity over a lookback window.
type EngagementMetrics struct {
	UserID                 string
	WindowDays             int
	Interactions           int
	Sessions               int
	InteractionsPerSession float64 // rounded to 2 decimals
	ActiveDays             int
	EngagementRate         float64 // activeDays / windowDays * 100, 2 decimals
}

// LikelyAction is one candidate follow-up event type with its probability.
type LikelyAction struct {
	EventType   string
	Probability float64
}

// NextActionPrediction is a naive nearest-neighbor lookahead. Confidence is
// the top candidate's probability, 0 when the user has too little history.
type NextActionPrediction struct {
	UserID        string
	LikelyActions []LikelyAction // at most 5, descending probability
	Confidence    float64
}
