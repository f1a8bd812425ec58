package terpene

import (
	"context"
	"fmt"
	"strings"

	"github.com/leaf-cloud/straindex/internal/collections"
	"github.com/leaf-cloud/straindex/internal/domain"
)

const (
	defaultQueryTopK = 5
	maxQueryTopK     = 20

	querySystemPrompt = "You are a cannabis terpene expert. Answer the question " +
		"using only the provided context. If the context does not contain the " +
		"answer, say so instead of guessing."
)

// QuerySource is one context block that backed the answer.
type QuerySource struct {
	ID    string
	Score float64
	Text  string
}

// QueryAnswer is a retrieval-augmented answer over the terpene collection.
type QueryAnswer struct {
	Answer     string
	Model      string
	TokensUsed int
	Sources    []QuerySource
}

// Query answers a free-form question grounded in the terpene collection:
// embed the question, fetch the top-K nearest terpene texts, and hand
// them to the chat model as numbered context blocks.
func (s *Service) Query(ctx context.Context, question string, topK int) (QueryAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return QueryAnswer{}, fmt.Errorf("question is required: %w", domain.ErrValidation)
	}
	if s.embedder == nil || s.chat == nil {
		return QueryAnswer{}, domain.ErrChatNotConfigured
	}
	if topK <= 0 {
		topK = defaultQueryTopK
	}
	if topK > maxQueryTopK {
		topK = maxQueryTopK
	}

	emb, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return QueryAnswer{}, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.vectors.Search(ctx, collections.Terpenes, emb.Embedding, nil, topK)
	if err != nil {
		return QueryAnswer{}, fmt.Errorf("search context: %w", err)
	}

	sources := make([]QuerySource, 0, len(hits))
	var b strings.Builder
	for i, hit := range hits {
		text := hit.Payload["text"]
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, text)
		sources = append(sources, QuerySource{ID: hit.ID, Score: hit.Score, Text: text})
	}
	contextBlocks := b.String()
	if contextBlocks == "" {
		contextBlocks = "(no matching entries)\n"
	}

	result, err := s.chat.Complete(ctx, domain.ChatPrompt{
		System: querySystemPrompt,
		Prompt: "Context:\n" + contextBlocks + "\nQuestion: " + question,
	})
	if err != nil {
		return QueryAnswer{}, fmt.Errorf("generate answer: %w", err)
	}

	return QueryAnswer{
		Answer:     result.Content,
		Model:      result.Model,
		TokensUsed: result.TokensUsed,
		Sources:    sources,
	}, nil
}
