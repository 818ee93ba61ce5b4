package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// ErrorDetails datos adicionales de errores de estoque o validación.
type ErrorDetails struct {
	ItemID    string `json:"item_id,omitempty"`
	Field     string `json:"field,omitempty"`
	Available *int64 `json:"available,omitempty"`
	Requested *int64 `json:"requested,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
