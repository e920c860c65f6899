package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /notifications.
//
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        non_lues  query     bool  false  "Only unread notifications"
// @Success      200       {array}   domain.Notification
// @Failure      401       {object}  errorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("non_lues"))

	items, err := h.service.List(c.Request().Context(), actor.ID, unreadOnly)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return c.JSON(http.StatusOK, items)
}

// MarkRead handles PUT /notifications/:id/lue.
//
// @Summary      Mark a notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /notifications/{id}/lue [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.Request().Context(), c.Param("id"), actor.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
