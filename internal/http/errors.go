package http

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"ordergw/internal/apperr"
)

// errorBody is the uniform error response shape: a stable machine-readable
// code plus a human-readable message.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// respondError maps an application error onto its HTTP status and body.
// Anything outside the taxonomy becomes an opaque 500.
func respondError(c echo.Context, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return c.JSON(e.Status, errorBody{Code: e.Code, Message: e.Message})
	}

	log.Errorf("unhandled error: %v", err)

	return c.JSON(http.StatusInternalServerError, errorBody{
		Code:    "INTERNAL",
		Message: "internal error",
	})
}
