package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation signals a malformed or incomplete domain object,
	// rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable signals that the vector store failed to initialize.
	// Raised on every call; never retried automatically.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrChatNotConfigured signals a missing OpenAI credential. The rest of
	// the service keeps working; only LLM-backed routes degrade.
	ErrChatNotConfigured = errors.New("chat provider not configured")
)
