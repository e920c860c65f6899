package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

// AnnonceHandler handles HTTP requests for driver routes.
type AnnonceHandler struct {
	service ports.AnnonceService
}

func NewAnnonceHandler(service ports.AnnonceService) *AnnonceHandler {
	return &AnnonceHandler{service: service}
}

// Create handles POST /annonces.
//
// @Summary      Publish an annonce
// @Tags         annonces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAnnonceRequest  true  "Route details"
// @Success      201   {object}  domain.Annonce
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /annonces [post]
func (h *AnnonceHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createAnnonceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.service.Create(c.Request().Context(), toCreateAnnonceInput(req, actor.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// List handles GET /annonces.
//
// @Summary      Search annonces
// @Tags         annonces
// @Produce      json
// @Security     BearerAuth
// @Param        ville_depart     query     string  false  "Departure city prefix"
// @Param        ville_arrivee    query     string  false  "Arrival city prefix"
// @Param        date_depart_min  query     string  false  "Earliest departure (RFC3339 or YYYY-MM-DD)"
// @Param        statut           query     string  false  "active (default) or inactive"
// @Param        conducteur_id    query     string  false  "Filter by driver"
// @Param        page             query     int     false  "Page (1-based)"
// @Param        limit            query     int     false  "Page size (max 100)"
// @Success      200              {object}  pageResponse[domain.Annonce]
// @Failure      400              {object}  errorResponse
// @Router       /annonces [get]
func (h *AnnonceHandler) List(c echo.Context) error {
	var q listAnnoncesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	dateMin, err := parseDateParam(q.DateDepartMin)
	if err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), ports.ListAnnoncesInput{
		ConducteurID:  q.ConducteurID,
		VilleDepart:   q.VilleDepart,
		VilleArrivee:  q.VilleArrivee,
		DateDepartMin: dateMin,
		Statut:        q.Statut,
		Page:          q.Page,
		Limit:         q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnnoncePage(res))
}

// Get handles GET /annonces/:id.
//
// @Summary      Get an annonce
// @Tags         annonces
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Annonce ID"
// @Success      200  {object}  domain.Annonce
// @Failure      404  {object}  errorResponse
// @Router       /annonces/{id} [get]
func (h *AnnonceHandler) Get(c echo.Context) error {
	a, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// UpdateStatus handles PUT /annonces/:id/statut.
//
// @Summary      Activate or deactivate an annonce
// @Tags         annonces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Annonce ID"
// @Param        body  body      annonceStatusRequest  true  "New status"
// @Success      200   {object}  domain.Annonce
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /annonces/{id}/statut [put]
func (h *AnnonceHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req annonceStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), actor, domain.AnnonceStatus(req.Statut))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Delete handles DELETE /annonces/:id.
//
// @Summary      Delete an annonce and its demandes
// @Tags         annonces
// @Security     BearerAuth
// @Param        id   path  string  true  "Annonce ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /annonces/{id} [delete]
func (h *AnnonceHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
