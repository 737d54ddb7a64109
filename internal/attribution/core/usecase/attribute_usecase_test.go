package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"content-roi-service/internal/attribution/core/domain"
	"content-roi-service/internal/attribution/core/usecase"

	"github.com/shopspring/decimal"
)

func show(id string, release time.Time) domain.ContentItem {
	return domain.ContentItem{
		ShowID:         id,
		Title:          "Title " + id,
		Genre:          "Drama",
		ReleaseDate:    release,
		ProductionCost: decimal.NewFromInt(1_000_000),
	}
}

func user(id string, signUp time.Time) domain.User {
	return domain.User{
		UserID:         id,
		SignUpDate:     signUp,
		LastActiveDate: signUp.AddDate(0, 6, 0),
		MonthlyRevenue: decimal.NewFromFloat(9.99),
	}
}

// ------------------------------------------------------------
// Attribute: window and last-touch selection
// ------------------------------------------------------------

func TestAttribute_LastTouchWithinWindow(t *testing.T) {
	catalog := []domain.ContentItem{
		show("SH0001", domain.Date(2024, 1, 1)),
		show("SH0002", domain.Date(2024, 1, 5)),
	}
	users := []domain.User{user("U000001", domain.Date(2024, 1, 6))}

	for _, window := range []int{3, 4, 7} {
		got, err := usecase.Attribute(users, catalog, window)
		if err != nil {
			t.Fatalf("window=%d: unexpected error: %v", window, err)
		}
		if got["U000001"] != "SH0002" {
			t.Fatalf("window=%d: expected SH0002 (latest release), got %q", window, got["U000001"])
		}
	}
}

func TestAttribute_WindowBoundsInclusive(t *testing.T) {
	catalog := []domain.ContentItem{show("SH0001", domain.Date(2024, 1, 1))}

	// Release exactly window_days before signup still qualifies.
	onLowerBound := []domain.User{user("U000001", domain.Date(2024, 1, 8))}
	got, err := usecase.Attribute(onLowerBound, catalog, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["U000001"] != "SH0001" {
		t.Fatalf("expected release on window boundary to qualify, got %q", got["U000001"])
	}

	// Release on the signup date itself qualifies.
	onSignup := []domain.User{user("U000002", domain.Date(2024, 1, 1))}
	got, err = usecase.Attribute(onSignup, catalog, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["U000002"] != "SH0001" {
		t.Fatalf("expected release on signup date to qualify, got %q", got["U000002"])
	}

	// One day outside the window does not.
	outside := []domain.User{user("U000003", domain.Date(2024, 1, 9))}
	got, err = usecase.Attribute(outside, catalog, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["U000003"]; ok {
		t.Fatalf("expected no attribution outside window, got %q", got["U000003"])
	}
}

func TestAttribute_ReleaseAfterSignupNeverQualifies(t *testing.T) {
	catalog := []domain.ContentItem{show("SH0001", domain.Date(2024, 1, 10))}
	users := []domain.User{user("U000001", domain.Date(2024, 1, 6))}

	got, err := usecase.Attribute(users, catalog, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mapping, got %v", got)
	}
}

// ------------------------------------------------------------
// Attribute: tie-break and determinism
// ------------------------------------------------------------

func TestAttribute_TieBreakLowestShowID(t *testing.T) {
	sameDay := domain.Date(2024, 3, 1)
	catalog := []domain.ContentItem{
		show("SH0042", sameDay),
		show("SH0007", sameDay),
		show("SH0100", sameDay),
	}
	users := []domain.User{user("U000001", domain.Date(2024, 3, 2))}

	got, err := usecase.Attribute(users, catalog, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["U000001"] != "SH0007" {
		t.Fatalf("expected lowest show ID SH0007 on tie, got %q", got["U000001"])
	}

	// Input order must not matter.
	reversed := []domain.ContentItem{catalog[2], catalog[0], catalog[1]}
	again, err := usecase.Attribute(users, reversed, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again["U000001"] != "SH0007" {
		t.Fatalf("tie-break depends on input order: got %q", again["U000001"])
	}
}

func TestAttribute_Deterministic(t *testing.T) {
	catalog := []domain.ContentItem{
		show("SH0001", domain.Date(2024, 1, 1)),
		show("SH0002", domain.Date(2024, 1, 1)),
		show("SH0003", domain.Date(2024, 1, 3)),
	}
	users := []domain.User{
		user("U000001", domain.Date(2024, 1, 2)),
		user("U000002", domain.Date(2024, 1, 4)),
		user("U000003", domain.Date(2023, 12, 1)),
	}

	first, err := usecase.Attribute(users, catalog, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := usecase.Attribute(users, catalog, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("non-deterministic result size: %d vs %d", len(first), len(second))
	}
	for id, showID := range first {
		if second[id] != showID {
			t.Fatalf("non-deterministic result for %s: %q vs %q", id, showID, second[id])
		}
	}
}

// ------------------------------------------------------------
// Attribute: monotonicity in window size
// ------------------------------------------------------------

func TestAttribute_MonotonicInWindow(t *testing.T) {
	catalog := []domain.ContentItem{
		show("SH0001", domain.Date(2024, 1, 1)),
		show("SH0002", domain.Date(2024, 1, 10)),
		show("SH0003", domain.Date(2024, 2, 1)),
	}
	users := []domain.User{
		user("U000001", domain.Date(2024, 1, 4)),
		user("U000002", domain.Date(2024, 1, 12)),
		user("U000003", domain.Date(2024, 1, 20)),
		user("U000004", domain.Date(2024, 2, 14)),
	}

	windows := []int{3, 7, 14}
	prev, err := usecase.Attribute(users, catalog, windows[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, w := range windows[1:] {
		next, err := usecase.Attribute(users, catalog, w)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for id := range prev {
			if _, ok := next[id]; !ok {
				t.Fatalf("widening window to %d dropped attribution for %s", w, id)
			}
		}
		if len(next) < len(prev) {
			t.Fatalf("widening window to %d shrank attributions: %d -> %d", w, len(prev), len(next))
		}
		prev = next
	}
}

// ------------------------------------------------------------
// Attribute: configuration and empty inputs
// ------------------------------------------------------------

func TestAttribute_InvalidWindow(t *testing.T) {
	for _, w := range []int{0, -1} {
		_, err := usecase.Attribute(nil, nil, w)
		if !errors.Is(err, usecase.ErrInvalidWindow) {
			t.Fatalf("window=%d: expected ErrInvalidWindow, got %v", w, err)
		}
	}
}

func TestAttribute_EmptyInputs(t *testing.T) {
	got, err := usecase.Attribute(nil, nil, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mapping, got %v", got)
	}

	got, err = usecase.Attribute([]domain.User{user("U000001", domain.Date(2024, 1, 1))}, nil, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mapping with empty catalog, got %v", got)
	}
}

// ------------------------------------------------------------
// ApplyAttribution
// ------------------------------------------------------------

func TestApplyAttribution_KeepsExistingWhenUnmatched(t *testing.T) {
	users := []domain.User{
		user("U000001", domain.Date(2024, 1, 6)),
		{UserID: "U000002", SignUpDate: domain.Date(2024, 1, 6), LastActiveDate: domain.Date(2024, 6, 6), MonthlyRevenue: decimal.NewFromInt(10), AttributedShowID: "SH0009"},
	}
	enriched := usecase.ApplyAttribution(users, map[string]string{"U000001": "SH0001"})

	if enriched[0].AttributedShowID != "SH0001" {
		t.Fatalf("expected new attribution SH0001, got %q", enriched[0].AttributedShowID)
	}
	if enriched[1].AttributedShowID != "SH0009" {
		t.Fatalf("expected existing attribution preserved, got %q", enriched[1].AttributedShowID)
	}
	if users[0].AttributedShowID != "" {
		t.Fatalf("input slice must not be mutated")
	}
}

// ------------------------------------------------------------
// AttributeUseCase.Execute with fake source/sink
// ------------------------------------------------------------

type fakeSource struct {
	catalog       []domain.ContentItem
	users         []domain.User
	catalogReport domain.ValidationReport
	userReport    domain.ValidationReport
	err           error
}

func (f *fakeSource) LoadCatalog(ctx context.Context) ([]domain.ContentItem, domain.ValidationReport, error) {
	return f.catalog, f.catalogReport, f.err
}

func (f *fakeSource) LoadUsers(ctx context.Context) ([]domain.User, domain.ValidationReport, error) {
	return f.users, f.userReport, f.err
}

type fakeSink struct {
	written []domain.User
	called  bool
	err     error
}

func (f *fakeSink) WriteUsers(ctx context.Context, users []domain.User) error {
	f.called = true
	f.written = users
	return f.err
}

func TestAttributeUseCase_Success(t *testing.T) {
	source := &fakeSource{
		catalog: []domain.ContentItem{show("SH0001", domain.Date(2024, 1, 5))},
		users: []domain.User{
			user("U000001", domain.Date(2024, 1, 6)),
			user("U000002", domain.Date(2024, 6, 1)),
		},
	}
	sink := &fakeSink{}
	uc := usecase.NewAttributeUseCase(source, sink)

	out, err := uc.Execute(context.Background(), usecase.AttributeInput{WindowDays: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Attributed != 1 || out.Organic != 1 {
		t.Fatalf("expected 1 attributed / 1 organic, got %d / %d", out.Attributed, out.Organic)
	}
	if !sink.called {
		t.Fatalf("expected sink to be called")
	}
	if len(sink.written) != 2 {
		t.Fatalf("expected 2 enriched users written, got %d", len(sink.written))
	}
}

func TestAttributeUseCase_InvalidWindowAbortsBeforeLoad(t *testing.T) {
	sink := &fakeSink{}
	uc := usecase.NewAttributeUseCase(&fakeSource{}, sink)

	_, err := uc.Execute(context.Background(), usecase.AttributeInput{WindowDays: 0})
	if !errors.Is(err, usecase.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if sink.called {
		t.Fatalf("sink must not be called on configuration error")
	}
}

func TestAttributeUseCase_PolicyFailCollectsAllErrors(t *testing.T) {
	badUsers := []domain.User{
		{UserID: "U000001", SignUpDate: domain.Date(2024, 2, 1), LastActiveDate: domain.Date(2024, 1, 1), MonthlyRevenue: decimal.NewFromInt(10)},
		{UserID: "U000002", SignUpDate: domain.Date(2024, 1, 1), LastActiveDate: domain.Date(2024, 3, 1), MonthlyRevenue: decimal.NewFromInt(-5)},
	}
	source := &fakeSource{
		catalog: []domain.ContentItem{show("SH0001", domain.Date(2024, 1, 5))},
		users:   badUsers,
	}
	sink := &fakeSink{}
	uc := usecase.NewAttributeUseCase(source, sink)

	_, err := uc.Execute(context.Background(), usecase.AttributeInput{WindowDays: 7, Policy: domain.PolicyFail})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var report domain.ValidationReport
	if !errors.As(err, &report) {
		t.Fatalf("expected ValidationReport, got %T: %v", err, err)
	}
	if len(report) != 2 {
		t.Fatalf("expected both bad rows reported, got %d", len(report))
	}
	if sink.called {
		t.Fatalf("no output may be written when validation fails")
	}
}

func TestAttributeUseCase_PolicySkipDropsBadRows(t *testing.T) {
	source := &fakeSource{
		catalog: []domain.ContentItem{show("SH0001", domain.Date(2024, 1, 5))},
		users: []domain.User{
			user("U000001", domain.Date(2024, 1, 6)),
			{UserID: "U000002", SignUpDate: domain.Date(2024, 2, 1), LastActiveDate: domain.Date(2024, 1, 1), MonthlyRevenue: decimal.NewFromInt(10)},
		},
	}
	sink := &fakeSink{}
	uc := usecase.NewAttributeUseCase(source, sink)

	out, err := uc.Execute(context.Background(), usecase.AttributeInput{WindowDays: 7, Policy: domain.PolicySkip})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Users) != 1 {
		t.Fatalf("expected bad row skipped, got %d users", len(out.Users))
	}
	if len(out.Rejected) != 1 {
		t.Fatalf("expected 1 rejected record reported, got %d", len(out.Rejected))
	}
	if out.Rejected[0].RecordID != "U000002" {
		t.Fatalf("expected U000002 rejected, got %s", out.Rejected[0].RecordID)
	}
}
