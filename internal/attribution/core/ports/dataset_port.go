package ports

import (
	"context"

	"content-roi-service/internal/attribution/core/domain"
)

// DatasetSourcePort loads the two input tables. Row-level problems
// (unparsable dates, bad numbers) come back in the ValidationReport;
// the error return is reserved for I/O and shape problems such as a
// missing required column.
type DatasetSourcePort interface {
	LoadCatalog(ctx context.Context) ([]domain.ContentItem, domain.ValidationReport, error)
	LoadUsers(ctx context.Context) ([]domain.User, domain.ValidationReport, error)
}

// EnrichedSinkPort re-emits the user base with attributed_show_id populated.
// Implementations must write atomically: either the whole dataset lands or
// nothing does.
type EnrichedSinkPort interface {
	WriteUsers(ctx context.Context, users []domain.User) error
}
