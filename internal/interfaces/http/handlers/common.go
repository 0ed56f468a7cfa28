// Package handlers implements the gin handlers of the query surface.  Every
// handler is a thin translation layer: bind, call an application service, map
// the result or error onto the wire.
package handlers

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/juristack/juristack/internal/interfaces/http/middleware"
	"github.com/juristack/juristack/pkg/errors"
)

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// respondError maps an application error onto its HTTP status.  Server-side
// failures are masked with the generic message for their code; the full error
// stays in the request log.
func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "internal error")
	}

	resp := ErrorResponse{
		Code:      appErr.Code.String(),
		Message:   appErr.Message,
		Detail:    appErr.Detail,
		RequestID: middleware.GetRequestID(c),
	}
	if errors.IsServerError(appErr.Code) {
		resp.Message = errors.DefaultMessageForCode(appErr.Code)
		resp.Detail = ""
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(appErr.Code), resp)
}

// respondValidation reports a malformed request body or parameter.
func respondValidation(c *gin.Context, msg string) {
	respondError(c, errors.New(errors.ErrCodeValidation, msg))
}
