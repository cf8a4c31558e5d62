// Package respond writes the single JSON error envelope used by every handler.
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/logging"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// ErrorBody is the only error shape the API returns.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// MessageBody is returned by endpoints whose success carries only a message.
type MessageBody struct {
	Message string `json:"message"`
}

func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Error maps err onto its HTTP status and writes the envelope. Store errors
// keep their raw message.
func Error(c *gin.Context, operation string, err error) {
	kind := domain.KindOf(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		logging.New(c.Request.Context()).Error(operation, err)
	}
	Abort(c, status, kind.String(), message(err))
}

// Abort writes the envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Message: msg, Code: code})
}

func BadRequest(c *gin.Context, msg string) {
	Abort(c, http.StatusBadRequest, domain.KindValidation.String(), msg)
}

func message(err error) string {
	var e *domain.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
