package ports

import (
	"context"

	"content-roi-service/internal/metrics/core/domain"
)

// ResultSinkPort persists the three result tables of a run. Implementations
// must be all-or-nothing: a failing write leaves no partial output behind.
type ResultSinkPort interface {
	WriteReport(ctx context.Context, report *domain.Report) error
}
