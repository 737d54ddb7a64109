package csv

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"content-roi-service/internal/attribution/core/domain"
	"content-roi-service/internal/attribution/core/ports"
)

// EnrichedSink writes the user base back out with attributed_show_id
// populated. The file is written to a temp sibling and renamed into place so
// a failed run never leaves a partial dataset behind.
type EnrichedSink struct {
	Path string
}

func NewEnrichedSink(path string) *EnrichedSink {
	return &EnrichedSink{Path: path}
}

var _ ports.EnrichedSinkPort = (*EnrichedSink)(nil)

func (s *EnrichedSink) WriteUsers(ctx context.Context, users []domain.User) error {
	rows := make([][]string, 0, len(users)+1)
	rows = append(rows, userColumns)
	for _, u := range users {
		rows = append(rows, []string{
			u.UserID,
			u.SignUpDate.Format(domain.DateLayout),
			u.LastActiveDate.Format(domain.DateLayout),
			u.MonthlyRevenue.StringFixed(2),
			u.AttributedShowID,
		})
	}
	return writeFileAtomic(s.Path, rows)
}

// WriteCatalog writes a content catalog with the same whole-file-or-nothing
// guarantee as the enriched sink.
func WriteCatalog(path string, items []domain.ContentItem) error {
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, catalogColumns)
	for _, it := range items {
		rows = append(rows, []string{
			it.ShowID,
			it.Title,
			it.Genre,
			it.ReleaseDate.Format(domain.DateLayout),
			it.ProductionCost.StringFixed(2),
		})
	}
	return writeFileAtomic(path, rows)
}

func writeFileAtomic(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
