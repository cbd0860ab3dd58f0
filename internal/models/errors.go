package models

import "errors"

var (
	// ErrDataLoad means the catalog is unreadable or malformed.
	ErrDataLoad = errors.New("data load error")
	// ErrEmbedding means the embedding backend failed or returned a vector of the wrong size.
	ErrEmbedding = errors.New("embedding error")
	// ErrGeneration means the generative backend failed.
	ErrGeneration = errors.New("generation error")
	// ErrConfig means required configuration is missing or invalid.
	ErrConfig = errors.New("configuration error")
	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("query is empty")
)
