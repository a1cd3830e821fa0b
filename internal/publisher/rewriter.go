// Package publisher turns stored job records into rewritten article drafts
// and pushes them to the configured WordPress sites.
package publisher

import (
	"context"
	"fmt"

	"jobharvest/internal/config"
	"jobharvest/pkg/models"
)

// RewritePayload is the input handed to the article rewriter.
type RewritePayload struct {
	Role string            `json:"role"`
	Job  *models.JobRecord `json:"job"`
}

// Rewriter produces an original article body from a job record. The output
// is expected to be a single <article> element; callers normalize and clean
// it before publishing.
type Rewriter interface {
	// RewriteArticle generates the article HTML for a job record
	RewriteArticle(ctx context.Context, payload RewritePayload) (string, error)

	// IsHealthy checks if the rewriter backend is available
	IsHealthy(ctx context.Context) error

	// ProviderName returns the name of the backing provider
	ProviderName() string
}

// NewRewriter creates a rewriter based on the configured LLM provider.
func NewRewriter(cfg *config.Config) (Rewriter, error) {
	switch cfg.LLM.Provider {
	case "claude":
		return NewClaudeRewriter(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
