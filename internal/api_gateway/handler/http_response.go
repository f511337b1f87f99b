package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/api_gateway/middleware"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/domain/entry"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	// Set for failed installment series
	FailedIndex *int `json:"failed_index,omitempty"`
	Succeeded   *int `json:"succeeded,omitempty"`
}

// MetaInfo represents metadata in a response
type MetaInfo struct {
	TotalItems int `json:"total_items"`
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithList sends a list with its item count
func RespondWithList(c *gin.Context, data interface{}, totalItems int) {
	c.JSON(http.StatusOK, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
		Meta:          &MetaInfo{TotalItems: totalItems},
	})
}

func respondWithErrorInfo(c *gin.Context, statusCode int, info *ErrorInfo) {
	c.JSON(statusCode, &Response{
		Error:         info,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respondWithErrorInfo(c, statusCode, &ErrorInfo{Code: code, Message: message})
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondAccepted sends a 202 Accepted response with data.
func RespondAccepted(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusAccepted, data)
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondNotFound sends a 404 Not Found response with an error
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondInternalError sends a 500 Internal Server Error response with an error
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// RespondDomainError maps the ledger error taxonomy onto HTTP statuses.
// Store failures are logged and reported without internal detail.
func RespondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		validationErr entry.ValidationError
		notFoundErr   entry.NotFoundError
		conflictErr   entry.ConflictError
		seriesErr     entry.SeriesError
	)

	// SeriesError wraps the store cause, so it must match before the wrapped types
	switch {
	case errors.As(err, &seriesErr):
		logger.Error("Installment series failed", "error", err, "correlation_id", middleware.GetCorrelationID(c))
		index, succeeded := seriesErr.Index, seriesErr.Succeeded
		message := "Installment series failed and was rolled back"
		if !seriesErr.RolledBack {
			message = "Installment series failed part way; earlier installments remain saved"
		}
		respondWithErrorInfo(c, http.StatusInternalServerError, &ErrorInfo{
			Code:        "SERIES_FAILED",
			Message:     message,
			FailedIndex: &index,
			Succeeded:   &succeeded,
		})
	case errors.As(err, &validationErr):
		respondWithErrorInfo(c, http.StatusBadRequest, &ErrorInfo{
			Code:    "VALIDATION_ERROR",
			Message: validationErr.Error(),
			Field:   validationErr.Field,
		})
	case errors.As(err, &notFoundErr):
		RespondNotFound(c, "Entry not found")
	case errors.As(err, &conflictErr):
		RespondWithError(c, http.StatusConflict, "CONFLICT", conflictErr.Error())
	case errors.Is(err, service.ErrAsyncDisabled):
		RespondWithError(c, http.StatusServiceUnavailable, "ASYNC_DISABLED", err.Error())
	default:
		logger.Error("Request failed", "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondInternalError(c)
	}
}
