package domain

import "errors"

var (
	// ErrItemNotFound signals a missing catalog item.
	ErrItemNotFound = errors.New("item not found")
	// ErrMissingEmbedding signals that an item has no stored vector.
	ErrMissingEmbedding = errors.New("missing embedding")
	// ErrDimensionMismatch signals embeddings of differing lengths in one computation.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrProhibitedContent signals a query term that hit the blocked-keyword set.
	ErrProhibitedContent = errors.New("prohibited content")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit on the embedding provider.
	ErrRateLimited = errors.New("rate limited")
)
