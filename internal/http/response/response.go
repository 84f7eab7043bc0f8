package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/finwise/finwise-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps the service-layer sentinel wrapped in err to an
// HTTP status. Anything unrecognized is a 500.
func RespondServiceError(c *gin.Context, code string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, pkgerrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrConflict):
		status = http.StatusConflict
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
