package event

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/metrics"
)

const classifySystemPrompt = `You classify user behavior events from a cannabis education platform.
Respond with a single JSON object, no prose, with exactly these keys:
{"category": "learning|shopping|browsing|support",
 "intent": "research|purchase|compare|explore",
 "sentiment": "positive|neutral|negative",
 "complexity": "low|medium|high",
 "engagement": <integer 1-10>,
 "tags": [<up to 5 short strings>]}`

// Classifier derives a Classification from an event: chat completion
// first, deterministic keyword fallback when the provider is missing or
// fails. Results are cached in-memory by content hash, so repeated
// identical events cost one provider call.
type Classifier struct {
	chat   domain.ChatCompleter // nil when no API key is configured
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]domain.Classification
}

// NewClassifier creates a classifier. A nil chat client disables the
// provider path entirely: every event takes the keyword fallback.
func NewClassifier(chat domain.ChatCompleter, logger *zap.Logger) *Classifier {
	return &Classifier{
		chat:   chat,
		logger: logger,
		cache:  make(map[string]domain.Classification),
	}
}

// Classify returns the classification for an event.
func (c *Classifier) Classify(ctx context.Context, e *domain.UserEvent) domain.Classification {
	key := cacheKey(e)

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		metrics.EventClassificationsTotal.WithLabelValues("cache").Inc()
		return cached
	}

	cls, source := c.classify(ctx, e)
	cls.ClampEngagement()
	metrics.EventClassificationsTotal.WithLabelValues(source).Inc()

	c.mu.Lock()
	c.cache[key] = cls
	c.mu.Unlock()

	return cls
}

func (c *Classifier) classify(ctx context.Context, e *domain.UserEvent) (domain.Classification, string) {
	if c.chat == nil {
		return fallbackClassification(e), "fallback"
	}

	resp, err := c.chat.Complete(ctx, domain.ChatPrompt{
		System: classifySystemPrompt,
		Prompt: fmt.Sprintf("Event type: %s\nCategory hint: %s\nDetails: %s",
			e.EventType, e.Category, e.SearchText()),
	})
	if err != nil {
		c.logger.Warn("Event classification failed, using fallback",
			zap.String("event_type", e.EventType), zap.Error(err))
		return fallbackClassification(e), "fallback"
	}

	cls, err := parseClassification(resp.Content, e)
	if err != nil {
		c.logger.Warn("Unparseable classification response, using fallback",
			zap.String("event_type", e.EventType), zap.Error(err))
		return fallbackClassification(e), "fallback"
	}
	return cls, "llm"
}

// cacheKey hashes the classification-relevant content: identical
// type+metadata must map to one cache entry regardless of user or time.
func cacheKey(e *domain.UserEvent) string {
	h := sha256.Sum256([]byte(e.SearchText()))
	return hex.EncodeToString(h[:])
}

func parseClassification(content string, e *domain.UserEvent) (domain.Classification, error) {
	// Models occasionally wrap JSON in a code fence despite instructions.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed struct {
		Category   string   `json:"category"`
		Intent     string   `json:"intent"`
		Sentiment  string   `json:"sentiment"`
		Complexity string   `json:"complexity"`
		Engagement int      `json:"engagement"`
		Tags       []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return domain.Classification{}, fmt.Errorf("parse classification JSON: %w", err)
	}

	cls := domain.Classification{
		Category:   domain.Category(parsed.Category),
		Intent:     domain.Intent(parsed.Intent),
		Sentiment:  domain.Sentiment(parsed.Sentiment),
		Complexity: domain.Complexity(parsed.Complexity),
		Engagement: parsed.Engagement,
		Tags:       parsed.Tags,
	}
	if !cls.Category.IsValid() {
		cls.Category = e.Category
	}
	if cls.Intent == "" {
		cls.Intent = fallbackIntent(e)
	}
	if cls.Sentiment == "" {
		cls.Sentiment = domain.SentimentNeutral
	}
	if cls.Complexity == "" {
		cls.Complexity = domain.ComplexityLow
	}
	return cls, nil
}

// fallbackClassification derives a deterministic classification from
// the event itself, with no external calls.
func fallbackClassification(e *domain.UserEvent) domain.Classification {
	return domain.Classification{
		Category:   e.Category,
		Intent:     fallbackIntent(e),
		Sentiment:  domain.SentimentNeutral,
		Complexity: fallbackComplexity(e),
		Engagement: fallbackEngagement(e),
		Tags:       []string{e.EventType, string(e.Category)},
	}
}

func fallbackIntent(e *domain.UserEvent) domain.Intent {
	if e.Intent != "" {
		return e.Intent
	}
	switch e.Category {
	case domain.CategoryShopping:
		return domain.IntentPurchase
	case domain.CategoryLearning:
		return domain.IntentResearch
	case domain.CategorySupport:
		return domain.IntentResearch
	default:
		return domain.IntentExplore
	}
}

func fallbackComplexity(e *domain.UserEvent) domain.Complexity {
	text := e.SearchText()
	switch {
	case len(text) > 200 || strings.Contains(text, "compare"):
		return domain.ComplexityHigh
	case len(text) > 80:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityLow
	}
}

func fallbackEngagement(e *domain.UserEvent) int {
	switch e.EventType {
	case domain.EventQueryExecuted, domain.EventAnswerGenerated:
		return 7
	case domain.EventSearchPerformed:
		return 5
	default:
		return 3
	}
}
