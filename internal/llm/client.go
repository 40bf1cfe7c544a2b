// Package llm turns natural-language questions about the games collection
// into candidate SQLite queries. Generated text is untrusted and must pass
// safety validation before it goes anywhere near the database.
package llm

import (
	"context"
	"time"
)

// Client interface for SQL generation backends
type Client interface {
	GenerateSQL(ctx context.Context, question string) (string, error)
}

// Config holds configuration for LLM clients
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}
