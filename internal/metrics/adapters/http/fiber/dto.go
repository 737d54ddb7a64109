package fiber

import (
	"github.com/shopspring/decimal"

	"content-roi-service/internal/metrics/core/domain"
)

// ChurnRow is one month of the churn series.
// @Description Monthly churn metrics
type ChurnRow struct {
	Month        string  `json:"month" example:"2024-01"`
	UsersAtStart int     `json:"users_at_start"`
	UsersLost    int     `json:"users_lost"`
	ChurnRate    *string `json:"churn_rate"` // null when users_at_start is 0
}

type ChurnResponse struct {
	RunID      string        `json:"run_id"`
	WindowDays int           `json:"window_days"`
	Months     []ChurnRow    `json:"months"`
	Rejected   []RejectedRow `json:"rejected,omitempty"`
}

// RejectedRow is an input row excluded from the run, with the reason.
type RejectedRow struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

// GenreLTVRow is the lifetime-value rollup for one genre.
type GenreLTVRow struct {
	Genre           string  `json:"genre"`
	AttributedUsers int     `json:"attributed_users"`
	AvgLTV          *string `json:"avg_ltv"`
	TotalLTV        string  `json:"total_ltv"`
}

type GenreLTVResponse struct {
	RunID      string        `json:"run_id"`
	WindowDays int           `json:"window_days"`
	Genres     []GenreLTVRow `json:"genres"`
	Rejected   []RejectedRow `json:"rejected,omitempty"`
}

type ShowROIRow struct {
	ShowID          string  `json:"show_id"`
	Title           string  `json:"title"`
	Genre           string  `json:"genre"`
	ProductionCost  string  `json:"production_cost"`
	AttributedUsers int     `json:"attributed_users"`
	TotalRevenue    string  `json:"total_revenue"`
	ROI             *string `json:"roi"` // null when production_cost is 0
}

type GenreROIRow struct {
	Genre           string  `json:"genre"`
	Shows           int     `json:"shows"`
	ProductionCost  string  `json:"production_cost"`
	AttributedUsers int     `json:"attributed_users"`
	TotalRevenue    string  `json:"total_revenue"`
	ROI             *string `json:"roi"`
	CACPerUser      *string `json:"cac_per_user"`
	LTVPerUser      *string `json:"ltv_per_user"`
	LTVToCAC        *string `json:"ltv_to_cac"`
}

type ROIResponse struct {
	RunID      string        `json:"run_id"`
	WindowDays int           `json:"window_days"`
	GroupBy    string        `json:"group_by"` // "show" | "genre"
	Shows      []ShowROIRow  `json:"shows,omitempty"`
	Genres     []GenreROIRow `json:"genres,omitempty"`
	Rejected   []RejectedRow `json:"rejected,omitempty"`
}

type WindowOutcomeRow struct {
	WindowDays      int           `json:"window_days"`
	AttributedUsers int           `json:"attributed_users"`
	TotalUsers      int           `json:"total_users"`
	AttributionRate string        `json:"attribution_rate"`
	Genres          []GenreROIRow `json:"genres"`
}

type SensitivityResponse struct {
	Windows  []WindowOutcomeRow `json:"windows"`
	Rejected []RejectedRow      `json:"rejected,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_window"`
	Message string `json:"message,omitempty"`
}

func nullableString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func churnRows(points []domain.ChurnPoint) []ChurnRow {
	rows := make([]ChurnRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, ChurnRow{
			Month:        p.Month.Format("2006-01"),
			UsersAtStart: p.UsersAtStart,
			UsersLost:    p.UsersLost,
			ChurnRate:    nullableString(p.ChurnRate),
		})
	}
	return rows
}

func genreLTVRows(groups []domain.GenreLTV) []GenreLTVRow {
	rows := make([]GenreLTVRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, GenreLTVRow{
			Genre:           g.Genre,
			AttributedUsers: g.AttributedUsers,
			AvgLTV:          nullableString(g.AvgLTV),
			TotalLTV:        g.TotalLTV.StringFixed(2),
		})
	}
	return rows
}

func showROIRows(shows []domain.ShowROI) []ShowROIRow {
	rows := make([]ShowROIRow, 0, len(shows))
	for _, s := range shows {
		rows = append(rows, ShowROIRow{
			ShowID:          s.ShowID,
			Title:           s.Title,
			Genre:           s.Genre,
			ProductionCost:  s.ProductionCost.StringFixed(2),
			AttributedUsers: s.AttributedUsers,
			TotalRevenue:    s.TotalRevenue.StringFixed(2),
			ROI:             nullableString(s.ROI),
		})
	}
	return rows
}

func rejectedRows(records []domain.RejectedRecord) []RejectedRow {
	if len(records) == 0 {
		return nil
	}
	rows := make([]RejectedRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, RejectedRow{
			RecordID: rec.RecordID,
			Field:    rec.Field,
			Reason:   rec.Reason,
		})
	}
	return rows
}

func genreROIRows(genres []domain.GenreROI) []GenreROIRow {
	rows := make([]GenreROIRow, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, GenreROIRow{
			Genre:           g.Genre,
			Shows:           g.Shows,
			ProductionCost:  g.ProductionCost.StringFixed(2),
			AttributedUsers: g.AttributedUsers,
			TotalRevenue:    g.TotalRevenue.StringFixed(2),
			ROI:             nullableString(g.ROI),
			CACPerUser:      nullableString(g.CACPerUser),
			LTVPerUser:      nullableString(g.LTVPerUser),
			LTVToCAC:        nullableString(g.LTVToCAC),
		})
	}
	return rows
}
