package api

import (
	"errors"
	"net/http"

	"lotledger/pkg/lotledger"
)

// ErrorResponse is the structured error payload of the API.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// writeErrorResponse writes an error response, deriving the HTTP status
// from the error's classification code when it carries one.
func writeErrorResponse(w http.ResponseWriter, fallbackStatus int, err error) {
	status := fallbackStatus
	response := ErrorResponse{Message: err.Error()}

	var structured *lotledger.Error
	if errors.As(err, &structured) {
		response.ErrorCode = string(structured.Code)
		status = mapErrorCodeToHTTPStatus(structured.Code)
	}
	response.Code = status

	writeJSON(w, status, response)
}

// mapErrorCodeToHTTPStatus maps engine error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code lotledger.ErrorCode) int {
	switch code {
	case lotledger.ErrCodeInvalidInput, lotledger.ErrCodeValidation:
		return http.StatusBadRequest
	case lotledger.ErrCodeNotFound:
		return http.StatusNotFound
	case lotledger.ErrCodeDatabase, lotledger.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
