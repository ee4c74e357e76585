package handler

import "github.com/Lion1208/fastpay/internal/interfaces/http/dto"

// APIResponse is the typed response envelope referenced by the OpenAPI
// annotations. Runtime responses are built through the dto package.
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the error envelope for OpenAPI documentation.
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse is the bare acknowledgement envelope for OpenAPI
// documentation.
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
