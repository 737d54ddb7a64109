package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	attrdomain "content-roi-service/internal/attribution/core/domain"
	attrusecase "content-roi-service/internal/attribution/core/usecase"
	"content-roi-service/internal/metrics/core/domain"
	"content-roi-service/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type GetReportUseCase interface {
	Execute(ctx context.Context, in usecase.ReportInput) (*domain.Report, error)
}

type RunSensitivityUseCase interface {
	Execute(ctx context.Context, in usecase.SensitivityInput) ([]domain.WindowOutcome, []domain.RejectedRecord, error)
}

type MetricsHandler struct {
	reportUC      GetReportUseCase
	sensitivityUC RunSensitivityUseCase
	defaultWindow int
	policy        attrdomain.InvalidRowPolicy
}

func NewMetricsHandler(reportUC GetReportUseCase, sensitivityUC RunSensitivityUseCase, defaultWindow int, policy attrdomain.InvalidRowPolicy) *MetricsHandler {
	return &MetricsHandler{
		reportUC:      reportUC,
		sensitivityUC: sensitivityUC,
		defaultWindow: defaultWindow,
		policy:        policy,
	}
}

// GetChurn godoc
// @Summary Monthly churn series
// @Description Churn rate per calendar month over the whole user base
// @Tags Metrics
// @Produce json
// @Param window_days query int false "Attribution window in days"
// @Success 200 {object} ChurnResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /metrics/churn [get]
func (h *MetricsHandler) GetChurn(c *fiber.Ctx) error {
	report, err := h.runReport(c)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(ChurnResponse{
		RunID:      report.RunID,
		WindowDays: report.WindowDays,
		Months:     churnRows(report.Churn),
		Rejected:   rejectedRows(report.Rejected),
	})
}

// GetLTV godoc
// @Summary Lifetime value by genre
// @Description Attributed-user count, average and total LTV per catalog genre
// @Tags Metrics
// @Produce json
// @Param window_days query int false "Attribution window in days"
// @Success 200 {object} GenreLTVResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /metrics/ltv [get]
func (h *MetricsHandler) GetLTV(c *fiber.Ctx) error {
	report, err := h.runReport(c)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(GenreLTVResponse{
		RunID:      report.RunID,
		WindowDays: report.WindowDays,
		Genres:     genreLTVRows(report.GenreLTV),
		Rejected:   rejectedRows(report.Rejected),
	})
}

// GetROI godoc
// @Summary Content ROI
// @Description Return on investment per show or per genre
// @Tags Metrics
// @Produce json
// @Param window_days query int false "Attribution window in days"
// @Param group_by query string false "Grouping: show | genre" default(show)
// @Success 200 {object} ROIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /metrics/roi [get]
func (h *MetricsHandler) GetROI(c *fiber.Ctx) error {
	groupBy := c.Query("group_by", "show")
	if groupBy != "show" && groupBy != "genre" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_group_by",
			Message: "group_by must be \"show\" or \"genre\"",
		})
	}

	report, err := h.runReport(c)
	if err != nil {
		return h.writeError(c, err)
	}

	resp := ROIResponse{
		RunID:      report.RunID,
		WindowDays: report.WindowDays,
		GroupBy:    groupBy,
		Rejected:   rejectedRows(report.Rejected),
	}
	if groupBy == "show" {
		resp.Shows = showROIRows(report.ShowROI)
	} else {
		resp.Genres = genreROIRows(report.GenreROI)
	}
	return c.JSON(resp)
}

// GetSensitivity godoc
// @Summary Attribution window sensitivity sweep
// @Description Re-runs attribution per window size and reports per-genre economics
// @Tags Metrics
// @Produce json
// @Param windows query string false "Comma-separated window sizes" default(3,7,14)
// @Success 200 {object} SensitivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /metrics/sensitivity [get]
func (h *MetricsHandler) GetSensitivity(c *fiber.Ctx) error {
	windows := usecase.DefaultWindows
	if raw := c.Query("windows", ""); raw != "" {
		windows = windows[:0:0]
		for _, part := range strings.Split(raw, ",") {
			w, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
					Error:   "invalid_windows",
					Message: "windows must be a comma-separated list of integers",
				})
			}
			windows = append(windows, w)
		}
	}

	outcomes, rejected, err := h.sensitivityUC.Execute(c.UserContext(), usecase.SensitivityInput{
		Windows: windows,
		Policy:  h.policy,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	resp := SensitivityResponse{
		Windows:  make([]WindowOutcomeRow, 0, len(outcomes)),
		Rejected: rejectedRows(rejected),
	}
	for _, o := range outcomes {
		resp.Windows = append(resp.Windows, WindowOutcomeRow{
			WindowDays:      o.WindowDays,
			AttributedUsers: o.AttributedUsers,
			TotalUsers:      o.TotalUsers,
			AttributionRate: o.AttributionRate.String(),
			Genres:          genreROIRows(o.GenreROI),
		})
	}
	return c.JSON(resp)
}

func (h *MetricsHandler) runReport(c *fiber.Ctx) (*domain.Report, error) {
	window := h.defaultWindow
	if raw := c.Query("window_days", ""); raw != "" {
		w, err := strconv.Atoi(raw)
		if err != nil {
			return nil, attrusecase.ErrInvalidWindow
		}
		window = w
	}
	return h.reportUC.Execute(c.UserContext(), usecase.ReportInput{
		WindowDays: window,
		Policy:     h.policy,
	})
}

func (h *MetricsHandler) writeError(c *fiber.Ctx, err error) error {
	var validation attrdomain.ValidationReport
	var reference domain.ReferenceReport

	switch {
	case errors.Is(err, attrusecase.ErrInvalidWindow),
		errors.Is(err, attrusecase.ErrInvalidPolicy),
		errors.Is(err, usecase.ErrNoWindows):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: err.Error(),
		})
	case errors.As(err, &validation):
		return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "invalid_rows",
			Message: validation.Error(),
		})
	case errors.As(err, &reference):
		return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "referential_inconsistency",
			Message: reference.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}
