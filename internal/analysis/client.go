package analysis

import (
	"context"

	"github.com/contractkit/playbookd/internal/playbook"
)

// Client sends one analysis request to an LLM provider and returns the
// decoded structured result.
type Client interface {
	Analyze(ctx context.Context, req Request) (*playbook.ChunkResult, error)
	Provider() string
	Model() string
	Close()
}
