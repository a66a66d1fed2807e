package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"runlog/internal/auth"
	"runlog/internal/service"
	"runlog/internal/strava"
	"runlog/internal/types"
)

// Error codes
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeUpstream    = "UPSTREAM_ERROR"
	CodeInternal    = "INTERNAL_ERROR"
	CodeRateLimited = "RATE_LIMIT_EXCEEDED"
)

// writeError maps err to a status and writes the error body. fallback is used
// for errors that match no known kind.
func writeError(c *gin.Context, err error, fallback int) {
	_ = c.Error(err)

	var (
		validation *service.ValidationError
		apiErr     *strava.APIError
	)
	status, code, msg := fallback, CodeInternal, err.Error()
	switch {
	case errors.As(err, &validation):
		status, code, msg = http.StatusBadRequest, CodeValidation, validation.Message
	case errors.Is(err, service.ErrNotFound):
		status, code, msg = http.StatusNotFound, CodeNotFound, "Not found"
	case errors.Is(err, service.ErrSyncInProgress):
		status, code = http.StatusConflict, CodeConflict
	case errors.As(err, &apiErr),
		errors.Is(err, auth.ErrInteractiveDisabled),
		errors.Is(err, auth.ErrAuthTimeout):
		status, code = http.StatusBadGateway, CodeUpstream
	}
	if status == http.StatusBadGateway {
		code = CodeUpstream
	}
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}

	c.JSON(status, types.ErrorResponse{Success: false, Code: code, Message: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Success: false, Code: CodeValidation, Message: msg})
}
