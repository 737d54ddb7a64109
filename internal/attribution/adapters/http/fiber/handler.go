package fiber

import (
	"context"
	"errors"
	"net/http"

	"content-roi-service/internal/attribution/core/domain"
	"content-roi-service/internal/attribution/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type RunAttributionUseCase interface {
	Execute(ctx context.Context, in usecase.AttributeInput) (*usecase.AttributeOutput, error)
}

type AttributionHandler struct {
	runUC         RunAttributionUseCase
	defaultWindow int
	defaultPolicy domain.InvalidRowPolicy
}

func NewAttributionHandler(runUC RunAttributionUseCase, defaultWindow int, defaultPolicy domain.InvalidRowPolicy) *AttributionHandler {
	return &AttributionHandler{runUC: runUC, defaultWindow: defaultWindow, defaultPolicy: defaultPolicy}
}

// RunAttribution godoc
// @Summary Run last-touch attribution
// @Description Recomputes attribution over the configured datasets and re-emits the enriched user base
// @Tags Attribution
// @Accept json
// @Produce json
// @Param request body RunAttributionRequest true "Run parameters"
// @Success 200 {object} RunAttributionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /attribution/run [post]
func (h *AttributionHandler) RunAttribution(c *fiber.Ctx) error {
	req := RunAttributionRequest{
		WindowDays: h.defaultWindow,
		Policy:     string(h.defaultPolicy),
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error: "invalid_json",
			})
		}
		if req.WindowDays == 0 {
			req.WindowDays = h.defaultWindow
		}
		if req.Policy == "" {
			req.Policy = string(h.defaultPolicy)
		}
	}

	out, err := h.runUC.Execute(c.UserContext(), usecase.AttributeInput{
		WindowDays: req.WindowDays,
		Policy:     domain.InvalidRowPolicy(req.Policy),
	})
	if err != nil {
		var report domain.ValidationReport
		switch {
		case errors.Is(err, usecase.ErrInvalidWindow),
			errors.Is(err, usecase.ErrInvalidPolicy):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_run_parameters",
				Message: err.Error(),
			})
		case errors.As(err, &report):
			return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{
				Error:   "invalid_rows",
				Message: report.Error(),
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	resp := RunAttributionResponse{
		WindowDays: req.WindowDays,
		Users:      len(out.Users),
		Attributed: out.Attributed,
		Organic:    out.Organic,
	}
	// Zero users means the rate has no denominator: null, not 0.
	if len(out.Users) > 0 {
		rate := decimal.NewFromInt(int64(out.Attributed)).
			DivRound(decimal.NewFromInt(int64(len(out.Users))), 4).String()
		resp.AttributionRate = &rate
	}
	for _, rej := range out.Rejected {
		resp.Rejected = append(resp.Rejected, RejectedRow{
			RecordID: rej.RecordID,
			Field:    rej.Field,
			Reason:   rej.Reason,
		})
	}
	return c.JSON(resp)
}
