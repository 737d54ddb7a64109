package csv

import (
	"os"
	"path/filepath"
	"strconv"

	"content-roi-service/internal/metrics/core/domain"
)

// WriteSweep writes a window-size sensitivity sweep as a single CSV, one row
// per window and genre, staged through a temp file like the report tables.
func WriteSweep(path string, outcomes []domain.WindowOutcome) error {
	rows := [][]string{{
		"window_days", "attributed_users", "total_users", "attribution_rate",
		"genre", "shows", "production_cost", "total_revenue", "roi", "ltv_to_cac",
	}}
	for _, o := range outcomes {
		for _, g := range o.GenreROI {
			rows = append(rows, []string{
				strconv.Itoa(o.WindowDays),
				strconv.Itoa(o.AttributedUsers),
				strconv.Itoa(o.TotalUsers),
				o.AttributionRate.String(),
				g.Genre,
				strconv.Itoa(g.Shows),
				g.ProductionCost.StringFixed(2),
				g.TotalRevenue.StringFixed(2),
				ratioField(g.ROI),
				ratioField(g.LTVToCAC),
			})
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := stageFile(dir, filepath.Base(path), rows)
	if err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
