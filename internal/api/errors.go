package api

import (
	"net/http"

	"datadesk/internal"
	apperrors "datadesk/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusByCode maps application error codes to HTTP statuses
var statusByCode = map[string]int{
	apperrors.CodeInvalidInput:      http.StatusBadRequest,
	apperrors.CodeUnauthorized:      http.StatusUnauthorized,
	apperrors.CodeForbidden:         http.StatusForbidden,
	apperrors.CodeNotFound:          http.StatusNotFound,
	apperrors.CodeSizeExceeded:      http.StatusRequestEntityTooLarge,
	apperrors.CodeUnsupportedFormat: http.StatusUnsupportedMediaType,
	apperrors.CodeParseError:        http.StatusUnprocessableEntity,
	apperrors.CodeQuotaExceeded:     http.StatusTooManyRequests,
	apperrors.CodeExternalService:   http.StatusBadGateway,
}

// StatusFor returns the HTTP status for err
func StatusFor(err error) int {
	if status, ok := statusByCode[apperrors.GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes the JSON error body and aborts the chain. Server
// errors are logged and their detail is withheld from the client.
func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.CodeInternalError
	}

	body := gin.H{"error": err.Error(), "code": code}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		internal.DefaultLogger.With("API").Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		body["error"] = "internal server error"
	}
	if loc := apperrors.GetLocator(err); loc != nil {
		body["locator"] = loc
	}
	c.AbortWithStatusJSON(status, body)
}
