package domain

import "errors"

var (
	// ErrListingNotFound is returned when a listing ID has no entry in the loaded corpus
	ErrListingNotFound = errors.New("listing not found in corpus")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCorpusNotReady is returned when queries arrive before a corpus snapshot is loaded
	ErrCorpusNotReady = errors.New("corpus not loaded")

	// ErrQuoteUnavailable is returned when the metals quote API request fails
	ErrQuoteUnavailable = errors.New("spot price quote unavailable")

	// ErrEmbeddingUnavailable is returned when the embedding service request fails
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
