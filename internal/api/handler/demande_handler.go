package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

// DemandeHandler handles HTTP requests for demandes and their status workflow.
type DemandeHandler struct {
	service ports.DemandeService
}

func NewDemandeHandler(service ports.DemandeService) *DemandeHandler {
	return &DemandeHandler{service: service}
}

// Create handles POST /demandes.
//
// @Summary      Submit a demande on an annonce
// @Tags         demandes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDemandeRequest  true  "Demande details"
// @Success      201   {object}  domain.Demande
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /demandes [post]
func (h *DemandeHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createDemandeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d, err := h.service.Create(c.Request().Context(), toCreateDemandeInput(req, actor.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// List handles GET /demandes.
//
// @Summary      List the caller's demandes
// @Tags         demandes
// @Produce      json
// @Security     BearerAuth
// @Param        statut      query     string  false  "Filter by status"
// @Param        annonce_id  query     string  false  "Filter by annonce"
// @Param        page        query     int     false  "Page (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200         {object}  pageResponse[domain.Demande]
// @Failure      401         {object}  errorResponse
// @Router       /demandes [get]
func (h *DemandeHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var q listDemandesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	res, err := h.service.List(c.Request().Context(), ports.ListDemandesInput{
		Actor:     actor,
		AnnonceID: q.AnnonceID,
		Statut:    q.Statut,
		Page:      q.Page,
		Limit:     q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDemandePage(res))
}

// Get handles GET /demandes/:id.
//
// @Summary      Get a demande
// @Tags         demandes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Demande ID"
// @Success      200  {object}  domain.Demande
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /demandes/{id} [get]
func (h *DemandeHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	d, err := h.service.Get(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Respond handles PUT /demandes/:id/reponse.
//
// @Summary      Accept or refuse a pending demande
// @Tags         demandes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Demande ID"
// @Param        body  body      respondRequest  true  "Driver response"
// @Success      200   {object}  domain.Demande
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /demandes/{id}/reponse [put]
func (h *DemandeHandler) Respond(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req respondRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d, err := h.service.Respond(c.Request().Context(), c.Param("id"), actor, req.Action, req.Commentaire)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// UpdateStatus handles PUT /demandes/:id/statut.
//
// @Summary      Advance a demande through the delivery workflow
// @Tags         demandes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Demande ID"
// @Param        body  body      statusRequest  true  "Target status"
// @Success      200   {object}  domain.Demande
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /demandes/{id}/statut [put]
func (h *DemandeHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), actor, domain.DemandeStatus(req.Statut), req.Commentaire)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Cancel handles PUT /demandes/:id/annuler.
//
// @Summary      Cancel a demande
// @Tags         demandes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Demande ID"
// @Param        body  body      cancelRequest  false "Cancellation reason"
// @Success      200   {object}  domain.Demande
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /demandes/{id}/annuler [put]
func (h *DemandeHandler) Cancel(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req cancelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d, err := h.service.Cancel(c.Request().Context(), c.Param("id"), actor, req.Motif)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Track handles GET /demandes/suivi/:numeroSuivi. No authentication.
//
// @Summary      Public tracking by tracking number
// @Tags         demandes
// @Produce      json
// @Param        numeroSuivi  path      string  true  "Tracking number (e.g. TC-7A8B9C2D)"
// @Success      200          {object}  trackingResponse
// @Failure      404          {object}  errorResponse
// @Router       /demandes/suivi/{numeroSuivi} [get]
func (h *DemandeHandler) Track(c echo.Context) error {
	view, err := h.service.Track(c.Request().Context(), c.Param("numeroSuivi"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingResponse(view))
}

// AddMessage handles POST /demandes/:id/messages.
//
// @Summary      Post a message on a demande
// @Tags         demandes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Demande ID"
// @Param        body  body      messageRequest  true  "Message"
// @Success      201   {object}  domain.Message
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /demandes/{id}/messages [post]
func (h *DemandeHandler) AddMessage(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req messageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.service.AddMessage(c.Request().Context(), c.Param("id"), actor, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// Evaluate handles POST /demandes/:id/evaluation.
//
// @Summary      Rate the driver of a delivered demande
// @Tags         demandes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Demande ID"
// @Param        body  body      evaluationRequest  true  "Evaluation"
// @Success      201   {object}  domain.Evaluation
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /demandes/{id}/evaluation [post]
func (h *DemandeHandler) Evaluate(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req evaluationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ev, err := h.service.Evaluate(c.Request().Context(), c.Param("id"), actor, req.Note, req.Commentaire)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ev)
}
