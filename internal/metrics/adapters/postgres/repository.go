package postgres

import (
	"context"

	"content-roi-service/internal/metrics/core/domain"
	"content-roi-service/internal/metrics/core/ports"

	"github.com/shopspring/decimal"
)

// ReportRepository persists the result tables and the rejected-record list
// so they can be queried by any relational engine. All rows of a run share
// the run ID and land in one transaction: a failing insert rolls everything
// back.
type ReportRepository struct {
	db DB
}

func NewReportRepository(db DB) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ ports.ResultSinkPort = (*ReportRepository)(nil)

// SQL templates
const createTablesSQL = `
CREATE TABLE IF NOT EXISTS churn_by_month (
    run_id        TEXT        NOT NULL,
    month         DATE        NOT NULL,
    users_at_start INTEGER    NOT NULL,
    users_lost    INTEGER     NOT NULL,
    churn_rate    NUMERIC(5,4),
    PRIMARY KEY (run_id, month)
);
CREATE TABLE IF NOT EXISTS ltv_by_genre (
    run_id           TEXT    NOT NULL,
    genre            TEXT    NOT NULL,
    attributed_users INTEGER NOT NULL,
    avg_ltv          NUMERIC(14,2),
    total_ltv        NUMERIC(16,2) NOT NULL,
    PRIMARY KEY (run_id, genre)
);
CREATE TABLE IF NOT EXISTS roi_by_show (
    run_id           TEXT    NOT NULL,
    show_id          TEXT    NOT NULL,
    title            TEXT    NOT NULL,
    genre            TEXT    NOT NULL,
    production_cost  NUMERIC(16,2) NOT NULL,
    attributed_users INTEGER NOT NULL,
    total_revenue    NUMERIC(16,2) NOT NULL,
    roi              NUMERIC(12,4),
    PRIMARY KEY (run_id, show_id)
);
CREATE TABLE IF NOT EXISTS roi_by_genre (
    run_id           TEXT    NOT NULL,
    genre            TEXT    NOT NULL,
    shows            INTEGER NOT NULL,
    production_cost  NUMERIC(16,2) NOT NULL,
    attributed_users INTEGER NOT NULL,
    total_revenue    NUMERIC(16,2) NOT NULL,
    roi              NUMERIC(12,4),
    cac_per_user     NUMERIC(16,2),
    ltv_per_user     NUMERIC(16,2),
    ltv_to_cac       NUMERIC(12,4),
    PRIMARY KEY (run_id, genre)
);
CREATE TABLE IF NOT EXISTS rejected_records (
    run_id    TEXT NOT NULL,
    record_id TEXT NOT NULL,
    field     TEXT NOT NULL,
    reason    TEXT NOT NULL,
    PRIMARY KEY (run_id, record_id, field)
);
`

const insertChurnSQL = `
INSERT INTO churn_by_month (run_id, month, users_at_start, users_lost, churn_rate)
VALUES ($1, $2, $3, $4, $5);
`

const insertGenreLTVSQL = `
INSERT INTO ltv_by_genre (run_id, genre, attributed_users, avg_ltv, total_ltv)
VALUES ($1, $2, $3, $4, $5);
`

const insertShowROISQL = `
INSERT INTO roi_by_show (run_id, show_id, title, genre, production_cost, attributed_users, total_revenue, roi)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

const insertGenreROISQL = `
INSERT INTO roi_by_genre (run_id, genre, shows, production_cost, attributed_users, total_revenue, roi, cac_per_user, ltv_per_user, ltv_to_cac)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

const insertRejectedSQL = `
INSERT INTO rejected_records (run_id, record_id, field, reason)
VALUES ($1, $2, $3, $4);
`

// EnsureSchema creates the result tables when they do not exist yet.
func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createTablesSQL)
	return err
}

func (r *ReportRepository) WriteReport(ctx context.Context, report *domain.Report) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := writeRows(ctx, tx, report); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeRows(ctx context.Context, tx Tx, report *domain.Report) error {
	for _, p := range report.Churn {
		if _, err := tx.ExecContext(ctx, insertChurnSQL,
			report.RunID, p.Month, p.UsersAtStart, p.UsersLost, nullableRatio(p.ChurnRate),
		); err != nil {
			return err
		}
	}
	for _, g := range report.GenreLTV {
		if _, err := tx.ExecContext(ctx, insertGenreLTVSQL,
			report.RunID, g.Genre, g.AttributedUsers, nullableRatio(g.AvgLTV), g.TotalLTV.String(),
		); err != nil {
			return err
		}
	}
	for _, s := range report.ShowROI {
		if _, err := tx.ExecContext(ctx, insertShowROISQL,
			report.RunID, s.ShowID, s.Title, s.Genre, s.ProductionCost.String(),
			s.AttributedUsers, s.TotalRevenue.String(), nullableRatio(s.ROI),
		); err != nil {
			return err
		}
	}
	for _, g := range report.GenreROI {
		if _, err := tx.ExecContext(ctx, insertGenreROISQL,
			report.RunID, g.Genre, g.Shows, g.ProductionCost.String(), g.AttributedUsers,
			g.TotalRevenue.String(), nullableRatio(g.ROI), nullableRatio(g.CACPerUser),
			nullableRatio(g.LTVPerUser), nullableRatio(g.LTVToCAC),
		); err != nil {
			return err
		}
	}
	for _, rec := range report.Rejected {
		if _, err := tx.ExecContext(ctx, insertRejectedSQL,
			report.RunID, rec.RecordID, rec.Field, rec.Reason,
		); err != nil {
			return err
		}
	}
	return nil
}

// nullableRatio maps a nil metric to SQL NULL, never to 0.
func nullableRatio(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
