package usecase

import (
	"context"
	"sort"
	"time"

	attrdomain "content-roi-service/internal/attribution/core/domain"
	attrports "content-roi-service/internal/attribution/core/ports"
	attrusecase "content-roi-service/internal/attribution/core/usecase"
	"content-roi-service/internal/metrics/core/domain"
	"content-roi-service/internal/metrics/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ratios round to 4 decimal places, money to 2, both half-up.
const (
	ratioPlaces = 4
	moneyPlaces = 2
)

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// ChurnByMonth walks a contiguous month sequence from the earliest signup
// month to the latest last-active month. For each month start, a user counts
// as active when sign_up <= month_start <= last_active, and as lost when
// they do not survive into the next month. The rate is nil (not 0) for
// months with nobody at the start.
func ChurnByMonth(users []attrdomain.User) []domain.ChurnPoint {
	if len(users) == 0 {
		return nil
	}

	first := attrdomain.MonthStart(users[0].SignUpDate)
	last := attrdomain.MonthStart(users[0].LastActiveDate)
	for _, u := range users[1:] {
		if m := attrdomain.MonthStart(u.SignUpDate); m.Before(first) {
			first = m
		}
		if m := attrdomain.MonthStart(u.LastActiveDate); m.After(last) {
			last = m
		}
	}

	var series []domain.ChurnPoint
	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		next := month.AddDate(0, 1, 0)
		point := domain.ChurnPoint{Month: month}
		for _, u := range users {
			if u.SignUpDate.After(month) || u.LastActiveDate.Before(month) {
				continue
			}
			point.UsersAtStart++
			if u.LastActiveDate.Before(next) {
				point.UsersLost++
			}
		}
		if point.UsersAtStart > 0 {
			rate := decimal.NewFromInt(int64(point.UsersLost)).
				DivRound(decimal.NewFromInt(int64(point.UsersAtStart)), ratioPlaces)
			point.ChurnRate = ptr(rate)
		}
		series = append(series, point)
	}
	return series
}

// LTVByGenre joins attributed users to their show's genre and rolls lifetime
// value up per genre. Grouping is content-first: every genre in the catalog
// yields a row, with a nil average when nobody was attributed to it.
func LTVByGenre(users []attrdomain.User, catalog []attrdomain.ContentItem) []domain.GenreLTV {
	genreByShow := make(map[string]string, len(catalog))
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, it := range catalog {
		genreByShow[it.ShowID] = it.Genre
		if _, ok := totals[it.Genre]; !ok {
			totals[it.Genre] = decimal.Zero
			counts[it.Genre] = 0
		}
	}

	for _, u := range users {
		if !u.Attributed() {
			continue
		}
		genre, ok := genreByShow[u.AttributedShowID]
		if !ok {
			continue // referential errors are the caller's to report
		}
		totals[genre] = totals[genre].Add(u.LifetimeValue())
		counts[genre]++
	}

	out := make([]domain.GenreLTV, 0, len(totals))
	for genre, total := range totals {
		row := domain.GenreLTV{
			Genre:           genre,
			AttributedUsers: counts[genre],
			TotalLTV:        total.Round(moneyPlaces),
		}
		if counts[genre] > 0 {
			row.AvgLTV = ptr(total.DivRound(decimal.NewFromInt(int64(counts[genre])), moneyPlaces))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out
}

// ROIByShow computes (revenue - cost) / cost per show, where revenue is the
// summed lifetime value of the show's attributed users. Every catalog show
// yields a row; ROI is nil exactly when the production cost is zero.
func ROIByShow(users []attrdomain.User, catalog []attrdomain.ContentItem) []domain.ShowROI {
	revenue := make(map[string]decimal.Decimal, len(catalog))
	attributed := make(map[string]int, len(catalog))
	known := make(map[string]struct{}, len(catalog))
	for _, it := range catalog {
		known[it.ShowID] = struct{}{}
	}
	for _, u := range users {
		if !u.Attributed() {
			continue
		}
		if _, ok := known[u.AttributedShowID]; !ok {
			continue
		}
		revenue[u.AttributedShowID] = revenue[u.AttributedShowID].Add(u.LifetimeValue())
		attributed[u.AttributedShowID]++
	}

	out := make([]domain.ShowROI, 0, len(catalog))
	for _, it := range catalog {
		rev := revenue[it.ShowID]
		row := domain.ShowROI{
			ShowID:          it.ShowID,
			Title:           it.Title,
			Genre:           it.Genre,
			ProductionCost:  it.ProductionCost.Round(moneyPlaces),
			AttributedUsers: attributed[it.ShowID],
			TotalRevenue:    rev.Round(moneyPlaces),
		}
		if it.ProductionCost.IsPositive() {
			row.ROI = ptr(rev.Sub(it.ProductionCost).DivRound(it.ProductionCost, ratioPlaces))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShowID < out[j].ShowID })
	return out
}

// ROIByGenre applies the same formula to genre-level sums of revenue and
// cost, and derives CAC and LTV:CAC per attributed user.
func ROIByGenre(users []attrdomain.User, catalog []attrdomain.ContentItem) []domain.GenreROI {
	type genreAcc struct {
		shows   int
		cost    decimal.Decimal
		revenue decimal.Decimal
		users   int
	}
	acc := make(map[string]*genreAcc)
	genreByShow := make(map[string]string, len(catalog))
	for _, it := range catalog {
		genreByShow[it.ShowID] = it.Genre
		a, ok := acc[it.Genre]
		if !ok {
			a = &genreAcc{}
			acc[it.Genre] = a
		}
		a.shows++
		a.cost = a.cost.Add(it.ProductionCost)
	}
	for _, u := range users {
		if !u.Attributed() {
			continue
		}
		genre, ok := genreByShow[u.AttributedShowID]
		if !ok {
			continue
		}
		acc[genre].revenue = acc[genre].revenue.Add(u.LifetimeValue())
		acc[genre].users++
	}

	out := make([]domain.GenreROI, 0, len(acc))
	for genre, a := range acc {
		row := domain.GenreROI{
			Genre:           genre,
			Shows:           a.shows,
			ProductionCost:  a.cost.Round(moneyPlaces),
			AttributedUsers: a.users,
			TotalRevenue:    a.revenue.Round(moneyPlaces),
		}
		if a.cost.IsPositive() {
			row.ROI = ptr(a.revenue.Sub(a.cost).DivRound(a.cost, ratioPlaces))
		}
		if a.users > 0 {
			n := decimal.NewFromInt(int64(a.users))
			row.CACPerUser = ptr(a.cost.DivRound(n, moneyPlaces))
			row.LTVPerUser = ptr(a.revenue.DivRound(n, moneyPlaces))
			if a.cost.IsPositive() {
				row.LTVToCAC = ptr(a.revenue.DivRound(a.cost, ratioPlaces))
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out
}

// CheckReferences finds users whose attributed show is not in the catalog.
func CheckReferences(users []attrdomain.User, catalog []attrdomain.ContentItem) domain.ReferenceReport {
	known := make(map[string]struct{}, len(catalog))
	for _, it := range catalog {
		known[it.ShowID] = struct{}{}
	}
	var report domain.ReferenceReport
	for _, u := range users {
		if !u.Attributed() {
			continue
		}
		if _, ok := known[u.AttributedShowID]; !ok {
			report = append(report, domain.RejectedRecord{
				RecordID: u.UserID,
				Field:    "attributed_show_id",
				Reason:   "show " + u.AttributedShowID + " not in catalog",
			})
		}
	}
	return report
}

// rejectedRows converts a validation report into rejected-record rows so
// skipped input rows surface in the run output alongside referential rejects.
func rejectedRows(report attrdomain.ValidationReport) []domain.RejectedRecord {
	if len(report) == 0 {
		return nil
	}
	rows := make([]domain.RejectedRecord, 0, len(report))
	for _, e := range report {
		rows = append(rows, domain.RejectedRecord{
			RecordID: e.RecordID,
			Field:    e.Field,
			Reason:   e.Reason,
		})
	}
	return rows
}

type ReportInput struct {
	WindowDays int
	Policy     attrdomain.InvalidRowPolicy
}

// ReportUseCase runs the whole batch: load and validate both datasets,
// attribute users, aggregate churn, genre LTV and ROI, and optionally
// persist the result tables through the sink.
type ReportUseCase struct {
	source attrports.DatasetSourcePort
	sink   ports.ResultSinkPort
}

// NewReportUseCase wires the aggregator to a dataset source and an optional
// result sink (nil for compute-only callers such as the HTTP layer).
func NewReportUseCase(source attrports.DatasetSourcePort, sink ports.ResultSinkPort) *ReportUseCase {
	return &ReportUseCase{source: source, sink: sink}
}

func (uc *ReportUseCase) Execute(ctx context.Context, in ReportInput) (*domain.Report, error) {
	if in.WindowDays <= 0 {
		return nil, attrusecase.ErrInvalidWindow
	}
	if in.Policy == "" {
		in.Policy = attrdomain.PolicyFail
	}
	if !in.Policy.Valid() {
		return nil, attrusecase.ErrInvalidPolicy
	}

	catalog, users, invalid, err := attrusecase.LoadValidated(ctx, uc.source, in.Policy)
	if err != nil {
		return nil, err
	}

	attribution, err := attrusecase.Attribute(users, catalog, in.WindowDays)
	if err != nil {
		return nil, err
	}
	enriched := attrusecase.ApplyAttribution(users, attribution)

	// Pre-existing attributions may point at shows the catalog no longer
	// has. Those rows are rejected, not silently dropped.
	refReport := CheckReferences(enriched, catalog)
	if len(refReport) > 0 && in.Policy == attrdomain.PolicyFail {
		return nil, refReport
	}
	if len(refReport) > 0 {
		bad := make(map[string]struct{}, len(refReport))
		for _, rec := range refReport {
			bad[rec.RecordID] = struct{}{}
		}
		kept := make([]attrdomain.User, 0, len(enriched))
		for _, u := range enriched {
			if _, ok := bad[u.UserID]; !ok {
				kept = append(kept, u)
			}
		}
		enriched = kept
	}

	report := &domain.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		WindowDays:  in.WindowDays,
		Churn:       ChurnByMonth(enriched),
		GenreLTV:    LTVByGenre(enriched, catalog),
		ShowROI:     ROIByShow(enriched, catalog),
		GenreROI:    ROIByGenre(enriched, catalog),
		Rejected:    append(rejectedRows(invalid), refReport...),
	}

	if uc.sink != nil {
		if err := uc.sink.WriteReport(ctx, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}
