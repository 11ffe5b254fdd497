package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wondercomic/wondercomic-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps any error onto the envelope. Server-side failures
// only expose their underlying detail when debug mode is on; client
// errors always carry their message.
func RespondError(c *gin.Context, debug bool, err error) {
	apiErr := apierr.From(err)

	msg := apiErr.Message
	if debug || apiErr.Status < http.StatusInternalServerError {
		msg = apiErr.Error()
	}
	if msg == "" {
		msg = "Internal server error"
	}

	c.JSON(apiErr.Status, ErrorEnvelope{Error: APIError{Message: msg, Code: apiErr.Code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
