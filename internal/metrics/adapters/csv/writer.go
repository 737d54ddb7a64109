package csv

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"content-roi-service/internal/metrics/core/domain"
	"content-roi-service/internal/metrics/core/ports"

	"github.com/shopspring/decimal"
)

// ReportWriter emits the result tables as CSV files in one directory:
// churn_by_month.csv, ltv_by_genre.csv, roi_by_show.csv, roi_by_genre.csv
// and rejected_records.csv. Each file is staged to a temp sibling first and
// all of them are renamed into place only after every write succeeded, so a
// failed run leaves the directory untouched.
type ReportWriter struct {
	Dir string
}

func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{Dir: dir}
}

var _ ports.ResultSinkPort = (*ReportWriter)(nil)

const monthLayout = "2006-01"

func (w *ReportWriter) WriteReport(ctx context.Context, report *domain.Report) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	churn := [][]string{{"month", "users_at_start", "users_lost", "churn_rate"}}
	for _, p := range report.Churn {
		churn = append(churn, []string{
			p.Month.Format(monthLayout),
			strconv.Itoa(p.UsersAtStart),
			strconv.Itoa(p.UsersLost),
			ratioField(p.ChurnRate),
		})
	}

	ltv := [][]string{{"genre", "attributed_users", "avg_ltv", "total_ltv"}}
	for _, g := range report.GenreLTV {
		ltv = append(ltv, []string{
			g.Genre,
			strconv.Itoa(g.AttributedUsers),
			ratioField(g.AvgLTV),
			g.TotalLTV.StringFixed(2),
		})
	}

	shows := [][]string{{"show_id", "title", "genre", "production_cost", "attributed_users", "total_revenue", "roi"}}
	for _, s := range report.ShowROI {
		shows = append(shows, []string{
			s.ShowID,
			s.Title,
			s.Genre,
			s.ProductionCost.StringFixed(2),
			strconv.Itoa(s.AttributedUsers),
			s.TotalRevenue.StringFixed(2),
			ratioField(s.ROI),
		})
	}

	genres := [][]string{{"genre", "shows", "production_cost", "attributed_users", "total_revenue", "roi", "cac_per_user", "ltv_per_user", "ltv_to_cac"}}
	for _, g := range report.GenreROI {
		genres = append(genres, []string{
			g.Genre,
			strconv.Itoa(g.Shows),
			g.ProductionCost.StringFixed(2),
			strconv.Itoa(g.AttributedUsers),
			g.TotalRevenue.StringFixed(2),
			ratioField(g.ROI),
			ratioField(g.CACPerUser),
			ratioField(g.LTVPerUser),
			ratioField(g.LTVToCAC),
		})
	}

	rejected := [][]string{{"record_id", "field", "reason"}}
	for _, rec := range report.Rejected {
		rejected = append(rejected, []string{rec.RecordID, rec.Field, rec.Reason})
	}

	files := []struct {
		name string
		rows [][]string
	}{
		{"churn_by_month.csv", churn},
		{"ltv_by_genre.csv", ltv},
		{"roi_by_show.csv", shows},
		{"roi_by_genre.csv", genres},
		{"rejected_records.csv", rejected},
	}

	staged := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for _, f := range files {
		tmp, err := stageFile(w.Dir, f.name, f.rows)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}
	for i, f := range files {
		if err := os.Rename(staged[i], filepath.Join(w.Dir, f.name)); err != nil {
			return err
		}
	}
	staged = nil
	return nil
}

func stageFile(dir, name string, rows [][]string) (string, error) {
	tmp, err := os.CreateTemp(dir, name+".tmp*")
	if err != nil {
		return "", err
	}
	cw := csv.NewWriter(tmp)
	if err := cw.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// ratioField renders a nullable metric as an empty CSV field, never "0".
func ratioField(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
