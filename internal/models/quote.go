// Package models defines core data structures for quotes, search parameters, and results.
package models

import "time"

// QuoteRecord represents a stored quote with its embedding.
type QuoteRecord struct {
	ID        string    `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Category  string    `json:"category" db:"category"`
	Embedding []float32 `json:"-" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// QuoteInput is the input for adding a quote to the store.
type QuoteInput struct {
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
}

// QuoteSummary is a quote without its embedding, as returned by list endpoints.
type QuoteSummary struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// ScoredQuote is a quote with its cosine similarity to a search topic.
type ScoredQuote struct {
	Text       string  `json:"text"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
}
