package csv_test

import (
	"path/filepath"
	"testing"

	csvadapter "content-roi-service/internal/metrics/adapters/csv"
	"content-roi-service/internal/metrics/core/domain"

	"github.com/shopspring/decimal"
)

// ---- SUCCESS ----

func TestWriteSweep_OneRowPerWindowAndGenre(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensitivity.csv")

	outcomes := []domain.WindowOutcome{
		{
			WindowDays: 3, AttributedUsers: 1, TotalUsers: 4,
			AttributionRate: decimal.RequireFromString("0.25"),
			GenreROI: []domain.GenreROI{
				{Genre: "Sci-Fi", Shows: 1, ProductionCost: decimal.NewFromInt(100), TotalRevenue: decimal.NewFromInt(40), ROI: ratio(t, "-0.6"), LTVToCAC: ratio(t, "0.4")},
			},
		},
		{
			WindowDays: 7, AttributedUsers: 3, TotalUsers: 4,
			AttributionRate: decimal.RequireFromString("0.75"),
			GenreROI: []domain.GenreROI{
				{Genre: "Horror", Shows: 2, ProductionCost: decimal.NewFromInt(300), TotalRevenue: decimal.NewFromInt(120)},
				{Genre: "Sci-Fi", Shows: 1, ProductionCost: decimal.NewFromInt(100), TotalRevenue: decimal.NewFromInt(60), ROI: ratio(t, "-0.4"), LTVToCAC: ratio(t, "0.6")},
			},
		},
	}

	if err := csvadapter.WriteSweep(path, outcomes); err != nil {
		t.Fatalf("WriteSweep: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if rows[1][0] != "3" || rows[1][4] != "Sci-Fi" {
		t.Errorf("first data row = %v", rows[1])
	}
	if rows[2][0] != "7" || rows[2][4] != "Horror" {
		t.Errorf("second data row = %v", rows[2])
	}
	if rows[1][3] != "0.25" || rows[2][2] != "4" {
		t.Errorf("rate/total fields wrong: %v %v", rows[1], rows[2])
	}
	// Horror genre has no ROI or LTV:CAC, the fields must be empty.
	if rows[2][8] != "" || rows[2][9] != "" {
		t.Errorf("nullable metrics not empty: %v", rows[2])
	}
}

func TestWriteSweep_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "sensitivity.csv")

	if err := csvadapter.WriteSweep(path, nil); err != nil {
		t.Fatalf("WriteSweep: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
}
