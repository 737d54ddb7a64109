package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChurnPoint is one month of the churn series. ChurnRate is nil when no
// user was active at the month start (never coerced to 0).
type ChurnPoint struct {
	Month        time.Time // first day of month, UTC
	UsersAtStart int
	UsersLost    int
	ChurnRate    *decimal.Decimal // 4 dp, in [0,1]
}

// GenreLTV is the lifetime-value rollup for one catalog genre. Every genre
// present in the catalog gets a row; AvgLTV is nil when the genre has no
// attributed users.
type GenreLTV struct {
	Genre           string
	AttributedUsers int
	AvgLTV          *decimal.Decimal // 2 dp
	TotalLTV        decimal.Decimal  // 2 dp
}

// ShowROI is the per-show return on investment. ROI is nil exactly when
// the production cost is zero.
type ShowROI struct {
	ShowID          string
	Title           string
	Genre           string
	ProductionCost  decimal.Decimal // 2 dp
	AttributedUsers int
	TotalRevenue    decimal.Decimal  // 2 dp
	ROI             *decimal.Decimal // 4 dp
}

// GenreROI applies the ROI formula to genre-level sums and carries the
// acquisition-efficiency ratios: CAC (production cost per attributed user)
// and LTV:CAC. The per-user ratios are nil when the genre acquired nobody.
type GenreROI struct {
	Genre           string
	Shows           int
	ProductionCost  decimal.Decimal // 2 dp
	AttributedUsers int
	TotalRevenue    decimal.Decimal  // 2 dp
	ROI             *decimal.Decimal // 4 dp, nil when cost is 0
	CACPerUser      *decimal.Decimal // 2 dp
	LTVPerUser      *decimal.Decimal // 2 dp
	LTVToCAC        *decimal.Decimal // 4 dp
}

// RejectedRecord is an input row excluded from a run, either because it
// failed validation or because its attributed show does not exist in the
// catalog. Every excluded row is reported with its identifier and reason.
type RejectedRecord struct {
	RecordID string
	Field    string
	Reason   string
}

// Report bundles the three result sets of one aggregation run.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	WindowDays  int
	Churn       []ChurnPoint
	GenreLTV    []GenreLTV
	ShowROI     []ShowROI
	GenreROI    []GenreROI
	Rejected    []RejectedRecord
}

// WindowOutcome is one step of a window-size sensitivity sweep.
type WindowOutcome struct {
	WindowDays      int
	AttributedUsers int
	TotalUsers      int
	AttributionRate decimal.Decimal // 4 dp
	GenreROI        []GenreROI
}
