package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transportconnect/marketplace/internal/core/ports"
)

type StatsHandler struct {
	service ports.StatsService
}

func NewStatsHandler(service ports.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Me handles GET /stats/me.
//
// @Summary      Dashboard counters for the caller
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userStatsResponse
// @Failure      403  {object}  errorResponse
// @Router       /stats/me [get]
func (h *StatsHandler) Me(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	s, err := h.service.ForUser(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userStatsResponse{
		Role:         s.Role,
		ParStatut:    s.ParStatut,
		Total:        s.Total,
		MontantLivre: s.MontantLivre,
		Statistiques: s.Statistiques,
	})
}

// Platform handles GET /admin/stats.
//
// @Summary      Platform-wide counters
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  platformStatsResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/stats [get]
func (h *StatsHandler) Platform(c echo.Context) error {
	s, err := h.service.Platform(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, platformStatsResponse{
		UtilisateursParRole: s.UtilisateursParRole,
		AnnoncesParStatut:   s.AnnoncesParStatut,
		DemandesParStatut:   s.DemandesParStatut,
	})
}
