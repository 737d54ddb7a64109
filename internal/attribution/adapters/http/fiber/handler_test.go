package fiber_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "content-roi-service/internal/attribution/adapters/http/fiber"
	"content-roi-service/internal/attribution/core/domain"
	"content-roi-service/internal/attribution/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type fakeRunUC struct {
	ExecuteFn func(ctx context.Context, in usecase.AttributeInput) (*usecase.AttributeOutput, error)
	lastInput usecase.AttributeInput
	called    bool
}

func (f *fakeRunUC) Execute(ctx context.Context, in usecase.AttributeInput) (*usecase.AttributeOutput, error) {
	f.called = true
	f.lastInput = in
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, in)
	}
	return &usecase.AttributeOutput{}, nil
}

func setupApp(t *testing.T, uc httpadapter.RunAttributionUseCase) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := httpadapter.NewAttributionHandler(uc, 7, domain.PolicyFail)
	app.Post("/attribution/run", h.RunAttribution)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	return resp
}

// ------------------------------------------------------------
// SUCCESS
// ------------------------------------------------------------

func TestRunAttribution_Success(t *testing.T) {
	uc := &fakeRunUC{
		ExecuteFn: func(ctx context.Context, in usecase.AttributeInput) (*usecase.AttributeOutput, error) {
			if in.WindowDays != 14 {
				t.Fatalf("expected window 14, got %d", in.WindowDays)
			}
			return &usecase.AttributeOutput{
				Users:      make([]domain.User, 4),
				Attributed: 3,
				Organic:    1,
			}, nil
		},
	}
	app := setupApp(t, uc)

	resp := postJSON(t, app, "/attribution/run", `{"window_days":14}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body httpadapter.RunAttributionResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if body.Attributed != 3 || body.Organic != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.AttributionRate == nil || *body.AttributionRate != "0.75" {
		t.Fatalf("expected rate 0.75, got %v", body.AttributionRate)
	}
}

func TestRunAttribution_NoUsersNullRate(t *testing.T) {
	uc := &fakeRunUC{}
	app := setupApp(t, uc)

	resp := postJSON(t, app, "/attribution/run", `{"window_days":7}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body httpadapter.RunAttributionResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if body.AttributionRate != nil {
		t.Fatalf("zero users must yield a null rate, got %q", *body.AttributionRate)
	}
}

func TestRunAttribution_DefaultsApplied(t *testing.T) {
	uc := &fakeRunUC{}
	app := setupApp(t, uc)

	resp := postJSON(t, app, "/attribution/run", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if uc.lastInput.WindowDays != 7 {
		t.Fatalf("expected default window 7, got %d", uc.lastInput.WindowDays)
	}
	if uc.lastInput.Policy != domain.PolicyFail {
		t.Fatalf("expected default policy fail, got %s", uc.lastInput.Policy)
	}
}

// ------------------------------------------------------------
// ERRORS
// ------------------------------------------------------------

func TestRunAttribution_InvalidWindow(t *testing.T) {
	uc := &fakeRunUC{
		ExecuteFn: func(ctx context.Context, in usecase.AttributeInput) (*usecase.AttributeOutput, error) {
			return nil, usecase.ErrInvalidWindow
		},
	}
	app := setupApp(t, uc)

	resp := postJSON(t, app, "/attribution/run", `{"window_days":-1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRunAttribution_ValidationReportMapsTo422(t *testing.T) {
	uc := &fakeRunUC{
		ExecuteFn: func(ctx context.Context, in usecase.AttributeInput) (*usecase.AttributeOutput, error) {
			return nil, domain.ValidationReport{
				{RecordID: "U000007", Field: "monthly_revenue", Reason: "negative value"},
			}
		},
	}
	app := setupApp(t, uc)

	resp := postJSON(t, app, "/attribution/run", `{"window_days":7}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var body httpadapter.ErrorResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "invalid_rows" {
		t.Fatalf("unexpected error code: %s", body.Error)
	}
}

func TestRunAttribution_InvalidJSON(t *testing.T) {
	uc := &fakeRunUC{}
	app := setupApp(t, uc)

	resp := postJSON(t, app, "/attribution/run", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if uc.called {
		t.Fatalf("usecase must not be called on invalid JSON")
	}
}
