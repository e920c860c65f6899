package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// domainStatus maps sentinel domain errors to HTTP status codes. The sentinel's
// own text is rendered so that wrapping context never leaks to clients.
var domainStatus = []struct {
	err  error
	code int
}{
	{domain.ErrDemandeNotFound, http.StatusNotFound},
	{domain.ErrAnnonceNotFound, http.StatusNotFound},
	{domain.ErrNotificationNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrConcurrentUpdate, http.StatusConflict},
	{domain.ErrDuplicateDemande, http.StatusConflict},
	{domain.ErrAnnonceHasActiveDemandes, http.StatusConflict},
	{domain.ErrAlreadyEvaluated, http.StatusConflict},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrNumeroSuiviTaken, http.StatusConflict},
	{domain.ErrAnnonceInactive, http.StatusBadRequest},
	{domain.ErrCapacityExceeded, http.StatusBadRequest},
	{domain.ErrColisTypeRejected, http.StatusBadRequest},
	{domain.ErrEvaluationNotAllowed, http.StatusBadRequest},
	{domain.ErrPositionNotAllowed, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrRateLimited, http.StatusTooManyRequests},
	{domain.ErrPositionQueueFull, http.StatusServiceUnavailable},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ite *domain.IllegalTransitionError
	if errors.As(err, &ite) {
		return http.StatusBadRequest, ite.Error()
	}

	switch {
	case errors.Is(err, domain.ErrIllegalTransition):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		// Carries field-level detail added by the service.
		return http.StatusBadRequest, err.Error()
	}

	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			return m.code, m.err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
