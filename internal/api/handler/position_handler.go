package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/transportconnect/marketplace/internal/core/ports"
)

// PositionDispatcher is the interface the handler uses to enqueue pings.
type PositionDispatcher interface {
	Enqueue(ping ports.PositionInput) error
}

// PositionHandler handles driver location ingestion.
type PositionHandler struct {
	dispatcher PositionDispatcher
	now        func() time.Time
}

// NewPositionHandler creates a PositionHandler backed by the given dispatcher.
func NewPositionHandler(dispatcher PositionDispatcher) *PositionHandler {
	return &PositionHandler{dispatcher: dispatcher, now: time.Now}
}

// Receive handles POST /demandes/:id/position. The ping is processed
// asynchronously; ownership and status are checked by the worker.
//
// @Summary      Report the driver's current position
// @Tags         demandes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Demande ID"
// @Param        body  body      positionRequest  true  "Position ping"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /demandes/{id}/position [post]
func (h *PositionHandler) Receive(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req positionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.dispatcher.Enqueue(toPositionInput(req, c.Param("id"), actor.ID, h.now())); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "position accepted"})
}
