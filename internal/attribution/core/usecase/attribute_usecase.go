package usecase

import (
	"context"
	"errors"
	"sort"

	"content-roi-service/internal/attribution/core/domain"
	"content-roi-service/internal/attribution/core/ports"
)

var (
	ErrInvalidWindow = errors.New("window_days must be a positive integer")
	ErrInvalidPolicy = errors.New("invalid_row_policy must be \"fail\" or \"skip\"")
)

// Attribute assigns to each user the last-touch show: the qualifying item
// with the latest release date, where an item qualifies when
//
//	sign_up_date - window_days <= release_date <= sign_up_date
//
// (both bounds inclusive). Items releasing on the same date tie-break to the
// lowest show ID, so the result is identical regardless of input ordering.
// Users with no qualifying item are absent from the returned map.
//
// The catalog is not mutated; it is scanned through a sorted copy and each
// user is resolved with a binary search over release dates.
func Attribute(users []domain.User, catalog []domain.ContentItem, windowDays int) (map[string]string, error) {
	if windowDays <= 0 {
		return nil, ErrInvalidWindow
	}

	result := make(map[string]string, len(users))
	if len(catalog) == 0 {
		return result, nil
	}

	sorted := make([]domain.ContentItem, len(catalog))
	copy(sorted, catalog)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].ReleaseDate.Equal(sorted[j].ReleaseDate) {
			return sorted[i].ReleaseDate.Before(sorted[j].ReleaseDate)
		}
		return sorted[i].ShowID < sorted[j].ShowID
	})

	for _, u := range users {
		// First item released strictly after signup; everything before
		// index i is a candidate upper half.
		i := sort.Search(len(sorted), func(k int) bool {
			return sorted[k].ReleaseDate.After(u.SignUpDate)
		})
		if i == 0 {
			continue
		}
		latest := sorted[i-1].ReleaseDate
		windowStart := u.SignUpDate.AddDate(0, 0, -windowDays)
		if latest.Before(windowStart) {
			continue
		}
		// Back up to the first item sharing the latest release date: the
		// secondary sort key makes that the lowest show ID.
		j := i - 1
		for j > 0 && sorted[j-1].ReleaseDate.Equal(latest) {
			j--
		}
		result[u.UserID] = sorted[j].ShowID
	}

	return result, nil
}

// ApplyAttribution returns a copy of users with AttributedShowID set from
// the mapping. A user absent from the mapping keeps any attribution the
// input row already carried.
func ApplyAttribution(users []domain.User, attribution map[string]string) []domain.User {
	enriched := make([]domain.User, len(users))
	copy(enriched, users)
	for i := range enriched {
		if showID, ok := attribution[enriched[i].UserID]; ok {
			enriched[i].AttributedShowID = showID
		}
	}
	return enriched
}

type AttributeInput struct {
	WindowDays int
	Policy     domain.InvalidRowPolicy
}

type AttributeOutput struct {
	Users      []domain.User
	Attributed int
	Organic    int
	Rejected   domain.ValidationReport
}

// AttributeUseCase loads the two datasets, validates them, runs last-touch
// attribution and re-emits the enriched user base through the sink.
type AttributeUseCase struct {
	source ports.DatasetSourcePort
	sink   ports.EnrichedSinkPort
}

// NewAttributeUseCase wires the engine to a dataset source and an enriched
// sink. The sink may be nil for compute-only callers.
func NewAttributeUseCase(source ports.DatasetSourcePort, sink ports.EnrichedSinkPort) *AttributeUseCase {
	return &AttributeUseCase{source: source, sink: sink}
}

func (uc *AttributeUseCase) Execute(ctx context.Context, in AttributeInput) (*AttributeOutput, error) {
	// Configuration errors abort before any row is touched.
	if in.WindowDays <= 0 {
		return nil, ErrInvalidWindow
	}
	if in.Policy == "" {
		in.Policy = domain.PolicyFail
	}
	if !in.Policy.Valid() {
		return nil, ErrInvalidPolicy
	}

	catalog, users, rejected, err := LoadValidated(ctx, uc.source, in.Policy)
	if err != nil {
		return nil, err
	}

	attribution, err := Attribute(users, catalog, in.WindowDays)
	if err != nil {
		return nil, err
	}
	enriched := ApplyAttribution(users, attribution)

	out := &AttributeOutput{Users: enriched, Rejected: rejected}
	for _, u := range enriched {
		if u.Attributed() {
			out.Attributed++
		} else {
			out.Organic++
		}
	}

	if uc.sink != nil {
		if err := uc.sink.WriteUsers(ctx, enriched); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// LoadValidated loads both datasets, merges parse-level and semantic
// validation findings, and applies the invalid-row policy: with PolicyFail a
// non-empty report is returned as the error, with PolicySkip the offending
// rows are dropped and the report is returned for the caller to surface.
func LoadValidated(ctx context.Context, source ports.DatasetSourcePort, policy domain.InvalidRowPolicy) ([]domain.ContentItem, []domain.User, domain.ValidationReport, error) {
	catalog, catalogReport, err := source.LoadCatalog(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	users, userReport, err := source.LoadUsers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	catalogReport = append(catalogReport, domain.ValidateCatalog(catalog)...)
	userReport = append(userReport, domain.ValidateUsers(users)...)

	rejected := make(domain.ValidationReport, 0, len(catalogReport)+len(userReport))
	rejected = append(rejected, catalogReport...)
	rejected = append(rejected, userReport...)

	if len(rejected) > 0 && policy == domain.PolicyFail {
		return nil, nil, nil, rejected
	}

	catalog = domain.FilterCatalog(catalog, catalogReport)
	users = domain.FilterUsers(users, userReport)
	return catalog, users, rejected, nil
}
