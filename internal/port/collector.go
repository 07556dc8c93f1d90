package port

import (
	"context"

	"ragqa/internal/domain"
)

// Collector gathers documents from one external source. Implementations
// are independent; the manager iterates over registered collectors
// without knowing their concrete types.
type Collector interface {
	// Name identifies the collector ("wikipedia", "news", ...).
	Name() string

	// Collect fetches documents from the source. A partial result with
	// a nil error is valid; per-item failures are skipped.
	Collect(ctx context.Context) ([]domain.Document, error)

	// SourceInfo describes the configured source for batch metadata.
	SourceInfo() map[string]string
}
