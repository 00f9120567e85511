package dto

// ErrorResponse cuerpo de error HTTP. Field nombra el campo ofensor en errores de validación.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// HealthResponse cuerpo de GET /health.
type HealthResponse struct {
	Status          string `json:"status"`
	Storage         string `json:"storage"`
	DegradedNumbers int64  `json:"degraded_numbers"`
}
