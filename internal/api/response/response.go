package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
)

// APIResponse is the envelope for successful responses
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the envelope for failed responses
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// Success writes a 200 with data
func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// SuccessWithMessage writes a 200 with data and a human-readable message
func SuccessWithMessage(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Message: message})
}

// Created writes a 201 with data
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// NoContent writes a 204
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Error classifies err by its error code and writes the matching status.
// Wrapped errors keep the code of the sentinel they wrap.
func Error(c echo.Context, err error) error {
	code := apperrors.GetErrorCode(err)
	return c.JSON(statusForCode(code), ErrorResponse{
		Success: false,
		Error:   err.Error(),
		Code:    code,
	})
}

// BadRequest writes a 400 with an INVALID_INPUT code
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeInvalidInput,
	})
}

// NotFound writes a 404 with a NOT_FOUND code
func NotFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeNotFound,
	})
}

// InternalError writes a 500 with an INTERNAL_ERROR code
func InternalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeInternalError,
	})
}

func statusForCode(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeDuplicateEntry, apperrors.CodeInvalidTransition:
		return http.StatusConflict
	case apperrors.CodeInvalidInput, apperrors.CodeInvalidEmail, apperrors.CodeInvalidConfig:
		return http.StatusBadRequest
	case apperrors.CodeMailboxUnavailable, apperrors.CodeSummarizationFailed, apperrors.CodeCompletionFailed:
		return http.StatusBadGateway
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
