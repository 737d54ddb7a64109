package fiber

// RunAttributionRequest triggers an attribution run over the configured
// datasets.
// @Description Attribution run parameters
type RunAttributionRequest struct {
	WindowDays int    `json:"window_days" example:"7"`
	Policy     string `json:"policy,omitempty" example:"fail"` // "fail" | "skip"
}

type RejectedRow struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

type RunAttributionResponse struct {
	WindowDays      int           `json:"window_days"`
	Users           int           `json:"users"`
	Attributed      int           `json:"attributed"`
	Organic         int           `json:"organic"`
	AttributionRate *string       `json:"attribution_rate"` // null when there are no users
	Rejected        []RejectedRow `json:"rejected,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_window"`
	Message string `json:"message,omitempty"`
}
