package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transportconnect/marketplace/internal/api/middleware"
	"github.com/transportconnect/marketplace/internal/core/domain"
)

// ctxActor extracts the caller injected by the Auth middleware. Both the user
// id and a typed role must be present; their absence means the route was
// mounted without authentication.
func ctxActor(c echo.Context) (domain.Actor, error) {
	id, _ := c.Get(middleware.ContextUserID).(string)
	role, _ := c.Get(middleware.ContextRole).(domain.Role)
	if id == "" || role == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Actor{ID: id, Role: role}, nil
}

// bindAndValidate binds the request body and runs the registered validator.
// Bind failures are 400, validation failures 422.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
