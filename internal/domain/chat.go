package domain

import "context"

// ChatPrompt is a single chat completion request. Zero Temperature and
// MaxTokens defer to the provider's configured defaults.
type ChatPrompt struct {
	System      string
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// ChatResult is a completion outcome.
type ChatResult struct {
	Content      string
	Model        string
	TokensUsed   int
	FinishReason string
}

// ChatCompleter produces chat completions.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt ChatPrompt) (ChatResult, error)
}
