// Package handler implements the HTTP layer: each handler extracts the
// caller identity and request payload, invokes repository operations and
// wraps results in the uniform {status, message, data} envelope. Handlers
// perform no recovery; domain errors raised in the repositories are only
// translated into status codes here.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/radiodent/radiodiagnostic-api/internal/repository"
	"github.com/radiodent/radiodiagnostic-api/internal/storage"
)

// envelope is the uniform response shape of the API.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// created wraps a successful mutation in the envelope with HTTP 201.
func created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, envelope{Status: "success", Message: message, Data: data})
}

// ok wraps a successful read in the envelope with HTTP 200.
func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Status: "success", Data: data})
}

// okCount is ok with an explicit element count for list responses.
func okCount(c echo.Context, data any, count int) error {
	return c.JSON(http.StatusOK, envelope{Status: "success", Data: data, Count: &count})
}

// fail ends the request with a client-error envelope.
func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, envelope{Status: "fail", Message: message})
}

// respondError translates domain errors into HTTP responses. Anything not
// carrying a known error kind is an internal failure.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrAuthentication):
		return fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrInvariant):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrUnsupportedPicture):
		return fail(c, http.StatusBadRequest, err.Error())
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError,
			envelope{Status: "error", Message: "internal server error"})
	}
}

// credentialID returns the authenticated credential id injected by the JWT
// middleware.
func credentialID(c echo.Context) (string, error) {
	id, ok := c.Get("user_id").(string)
	if !ok || id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}
