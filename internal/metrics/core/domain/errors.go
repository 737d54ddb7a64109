package domain

import (
	"fmt"
	"strings"
)

// ReferenceReport collects every user whose attributed show is absent from
// the catalog. It is an error so aggregation can refuse a run outright
// instead of silently dropping rows.
type ReferenceReport []RejectedRecord

func (r ReferenceReport) Error() string {
	if len(r) == 0 {
		return "no referential errors"
	}
	msgs := make([]string, len(r))
	for i, rec := range r {
		msgs[i] = fmt.Sprintf("record %s: %s: %s", rec.RecordID, rec.Field, rec.Reason)
	}
	return fmt.Sprintf("%d referentially inconsistent record(s): %s", len(r), strings.Join(msgs, "; "))
}
