package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"content-roi-service/internal/attribution/core/domain"
	"content-roi-service/internal/attribution/core/ports"

	"github.com/shopspring/decimal"
)

// MissingColumnError is a configuration error: the dataset shape is wrong,
// so no row is processed at all.
type MissingColumnError struct {
	File   string
	Column string
}

func (e MissingColumnError) Error() string {
	return fmt.Sprintf("%s: required column %q is missing", e.File, e.Column)
}

var catalogColumns = []string{"show_id", "title", "genre", "release_date", "production_cost"}
var userColumns = []string{"user_id", "sign_up_date", "last_active_date", "monthly_revenue", "attributed_show_id"}

// DatasetSource reads the content catalog and the user base from two CSV
// files. Row-level parse failures are collected into a ValidationReport so a
// single run reports every bad row; only I/O failures and missing columns
// come back as errors.
type DatasetSource struct {
	CatalogPath string
	UsersPath   string
}

func NewDatasetSource(catalogPath, usersPath string) *DatasetSource {
	return &DatasetSource{CatalogPath: catalogPath, UsersPath: usersPath}
}

var _ ports.DatasetSourcePort = (*DatasetSource)(nil)

func (s *DatasetSource) LoadCatalog(ctx context.Context) ([]domain.ContentItem, domain.ValidationReport, error) {
	rows, cols, err := readTable(s.CatalogPath, catalogColumns)
	if err != nil {
		return nil, nil, err
	}

	var items []domain.ContentItem
	var report domain.ValidationReport
	for _, row := range rows {
		id := row[cols["show_id"]]
		release, err := parseDate(row[cols["release_date"]])
		if err != nil {
			report = append(report, domain.ValidationError{RecordID: id, Field: "release_date", Reason: err.Error()})
			continue
		}
		cost, err := decimal.NewFromString(row[cols["production_cost"]])
		if err != nil {
			report = append(report, domain.ValidationError{RecordID: id, Field: "production_cost", Reason: "not a number"})
			continue
		}
		items = append(items, domain.ContentItem{
			ShowID:         id,
			Title:          row[cols["title"]],
			Genre:          row[cols["genre"]],
			ReleaseDate:    release,
			ProductionCost: cost,
		})
	}
	return items, report, nil
}

func (s *DatasetSource) LoadUsers(ctx context.Context) ([]domain.User, domain.ValidationReport, error) {
	rows, cols, err := readTable(s.UsersPath, userColumns[:4])
	if err != nil {
		return nil, nil, err
	}

	// attributed_show_id is optional on input; it only exists in datasets
	// that were already enriched once.
	attrIdx, hasAttr := cols["attributed_show_id"]

	var users []domain.User
	var report domain.ValidationReport
	for _, row := range rows {
		id := row[cols["user_id"]]
		signUp, err := parseDate(row[cols["sign_up_date"]])
		if err != nil {
			report = append(report, domain.ValidationError{RecordID: id, Field: "sign_up_date", Reason: err.Error()})
			continue
		}
		lastActive, err := parseDate(row[cols["last_active_date"]])
		if err != nil {
			report = append(report, domain.ValidationError{RecordID: id, Field: "last_active_date", Reason: err.Error()})
			continue
		}
		revenue, err := decimal.NewFromString(row[cols["monthly_revenue"]])
		if err != nil {
			report = append(report, domain.ValidationError{RecordID: id, Field: "monthly_revenue", Reason: "not a number"})
			continue
		}
		u := domain.User{
			UserID:         id,
			SignUpDate:     signUp,
			LastActiveDate: lastActive,
			MonthlyRevenue: revenue,
		}
		if hasAttr {
			u.AttributedShowID = row[attrIdx]
		}
		users = append(users, u)
	}
	return users, report, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable date %q", s)
	}
	return t, nil
}

// readTable reads a whole CSV file, checks the required header columns and
// returns the data rows plus a name->index map. The file handle is released
// on every exit path.
func readTable(path string, required []string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%s: empty file, expected a header row", path)
	}
	if err != nil {
		return nil, nil, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, MissingColumnError{File: path, Column: name}
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return rows, cols, nil
}
