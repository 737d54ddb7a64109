package usecase

import (
	"context"
	"errors"

	attrdomain "content-roi-service/internal/attribution/core/domain"
	attrports "content-roi-service/internal/attribution/core/ports"
	attrusecase "content-roi-service/internal/attribution/core/usecase"
	"content-roi-service/internal/metrics/core/domain"

	"github.com/shopspring/decimal"
)

var ErrNoWindows = errors.New("at least one window size is required")

// DefaultWindows is the standard sensitivity sweep.
var DefaultWindows = []int{3, 7, 14}

type SensitivityInput struct {
	Windows []int
	Policy  attrdomain.InvalidRowPolicy
}

// SensitivityUseCase re-runs attribution for each window size and reports
// how attribution rate and per-genre economics respond. The datasets are
// loaded once; each sweep step works on its own enriched copy.
type SensitivityUseCase struct {
	source attrports.DatasetSourcePort
}

func NewSensitivityUseCase(source attrports.DatasetSourcePort) *SensitivityUseCase {
	return &SensitivityUseCase{source: source}
}

// Execute sweeps every requested window over the loaded datasets. The second
// return value lists input rows the skip policy dropped; they are excluded
// from every outcome and must be surfaced to the caller.
func (uc *SensitivityUseCase) Execute(ctx context.Context, in SensitivityInput) ([]domain.WindowOutcome, []domain.RejectedRecord, error) {
	if len(in.Windows) == 0 {
		return nil, nil, ErrNoWindows
	}
	for _, w := range in.Windows {
		if w <= 0 {
			return nil, nil, attrusecase.ErrInvalidWindow
		}
	}
	if in.Policy == "" {
		in.Policy = attrdomain.PolicyFail
	}
	if !in.Policy.Valid() {
		return nil, nil, attrusecase.ErrInvalidPolicy
	}

	catalog, users, invalid, err := attrusecase.LoadValidated(ctx, uc.source, in.Policy)
	if err != nil {
		return nil, nil, err
	}

	outcomes := make([]domain.WindowOutcome, 0, len(in.Windows))
	for _, w := range in.Windows {
		attribution, err := attrusecase.Attribute(users, catalog, w)
		if err != nil {
			return nil, nil, err
		}
		enriched := attrusecase.ApplyAttribution(users, attribution)

		outcome := domain.WindowOutcome{
			WindowDays: w,
			TotalUsers: len(enriched),
			GenreROI:   ROIByGenre(enriched, catalog),
		}
		for _, u := range enriched {
			if u.Attributed() {
				outcome.AttributedUsers++
			}
		}
		if outcome.TotalUsers > 0 {
			outcome.AttributionRate = decimal.NewFromInt(int64(outcome.AttributedUsers)).
				DivRound(decimal.NewFromInt(int64(outcome.TotalUsers)), ratioPlaces)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rejectedRows(invalid), nil
}
