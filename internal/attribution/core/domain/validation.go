package domain

import (
	"fmt"
	"strings"
)

// InvalidRowPolicy decides what happens to rows that fail validation:
// reject the whole run, or drop the offending rows and continue.
type InvalidRowPolicy string

const (
	PolicyFail InvalidRowPolicy = "fail"
	PolicySkip InvalidRowPolicy = "skip"
)

func (p InvalidRowPolicy) Valid() bool {
	return p == PolicyFail || p == PolicySkip
}

// ValidationError describes a single rejected record.
type ValidationError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("record %s: %s: %s", e.RecordID, e.Field, e.Reason)
}

// ValidationReport collects every rejected record of a run so a single pass
// reports all problems instead of stopping at the first.
type ValidationReport []ValidationError

func (r ValidationReport) Error() string {
	if len(r) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(r))
	for i, e := range r {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d invalid record(s): %s", len(r), strings.Join(msgs, "; "))
}

// RecordIDs returns the set of offending record identifiers.
func (r ValidationReport) RecordIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r))
	for _, e := range r {
		ids[e.RecordID] = struct{}{}
	}
	return ids
}

// ValidateCatalog checks loaded content rows: unique show IDs and
// non-negative production cost.
func ValidateCatalog(items []ContentItem) ValidationReport {
	var report ValidationReport
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ShowID == "" {
			report = append(report, ValidationError{RecordID: it.ShowID, Field: "show_id", Reason: "empty identifier"})
			continue
		}
		if _, dup := seen[it.ShowID]; dup {
			report = append(report, ValidationError{RecordID: it.ShowID, Field: "show_id", Reason: "duplicate identifier"})
			continue
		}
		seen[it.ShowID] = struct{}{}
		if it.ProductionCost.IsNegative() {
			report = append(report, ValidationError{RecordID: it.ShowID, Field: "production_cost", Reason: "negative value"})
		}
	}
	return report
}

// ValidateUsers checks loaded user rows: unique user IDs, non-negative
// revenue, and last_active_date not before sign_up_date.
func ValidateUsers(users []User) ValidationReport {
	var report ValidationReport
	seen := make(map[string]struct{}, len(users))
	for _, u := range users {
		if u.UserID == "" {
			report = append(report, ValidationError{RecordID: u.UserID, Field: "user_id", Reason: "empty identifier"})
			continue
		}
		if _, dup := seen[u.UserID]; dup {
			report = append(report, ValidationError{RecordID: u.UserID, Field: "user_id", Reason: "duplicate identifier"})
			continue
		}
		seen[u.UserID] = struct{}{}
		if u.MonthlyRevenue.IsNegative() {
			report = append(report, ValidationError{RecordID: u.UserID, Field: "monthly_revenue", Reason: "negative value"})
		}
		if u.LastActiveDate.Before(u.SignUpDate) {
			report = append(report, ValidationError{RecordID: u.UserID, Field: "last_active_date", Reason: "before sign_up_date"})
		}
	}
	return report
}

// FilterCatalog drops catalog rows whose IDs appear in the report.
func FilterCatalog(items []ContentItem, report ValidationReport) []ContentItem {
	if len(report) == 0 {
		return items
	}
	bad := report.RecordIDs()
	kept := make([]ContentItem, 0, len(items))
	for _, it := range items {
		if _, ok := bad[it.ShowID]; !ok {
			kept = append(kept, it)
		}
	}
	return kept
}

// FilterUsers drops user rows whose IDs appear in the report.
func FilterUsers(users []User, report ValidationReport) []User {
	if len(report) == 0 {
		return users
	}
	bad := report.RecordIDs()
	kept := make([]User, 0, len(users))
	for _, u := range users {
		if _, ok := bad[u.UserID]; !ok {
			kept = append(kept, u)
		}
	}
	return kept
}
