package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

// --- Request → domain / service input ---

func toAdresse(a addressRequest) domain.Adresse {
	return domain.Adresse{
		Adresse:    strings.TrimSpace(a.Adresse),
		Ville:      strings.TrimSpace(a.Ville),
		CodePostal: strings.TrimSpace(a.CodePostal),
		Coordonnees: domain.Coordinates{
			Lat: a.Coordonnees.Lat,
			Lng: a.Coordonnees.Lng,
		},
	}
}

func toColis(c colisRequest) domain.Colis {
	return domain.Colis{
		Dimensions: domain.Dimensions{
			LongueurCm: c.Dimensions.LongueurCm,
			LargeurCm:  c.Dimensions.LargeurCm,
			HauteurCm:  c.Dimensions.HauteurCm,
		},
		PoidsKg:     c.PoidsKg,
		Type:        strings.TrimSpace(c.Type),
		Description: strings.TrimSpace(c.Description),
	}
}

func toCreateDemandeInput(req createDemandeRequest, expediteurID string) ports.CreateDemandeInput {
	return ports.CreateDemandeInput{
		ExpediteurID:      expediteurID,
		AnnonceID:         req.AnnonceID,
		Colis:             toColis(req.Colis),
		PrixPropose:       req.PrixPropose,
		ModePaiement:      req.ModePaiement,
		AdresseEnlevement: toAdresse(req.AdresseEnlevement),
		AdresseLivraison:  toAdresse(req.AdresseLivraison),
	}
}

func toCreateAnnonceInput(req createAnnonceRequest, conducteurID string) ports.CreateAnnonceInput {
	return ports.CreateAnnonceInput{
		ConducteurID:         conducteurID,
		LieuDepart:           toAdresse(req.LieuDepart),
		LieuArrivee:          toAdresse(req.LieuArrivee),
		EtapesIntermediaires: req.EtapesIntermediaires,
		DateDepart:           req.DateDepart,
		DateArriveeEstimee:   req.DateArriveeEstimee,
		Capacite: domain.Capacite{
			PoidsMaxKg:  req.Capacite.PoidsMaxKg,
			VolumeMaxM3: req.Capacite.VolumeMaxM3,
		},
		TypesColisAcceptes: req.TypesColisAcceptes,
		PrixParKg:          req.PrixParKg,
		Description:        req.Description,
	}
}

func toPositionInput(req positionRequest, demandeID, conducteurID string, now time.Time) ports.PositionInput {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return ports.PositionInput{
		DemandeID:    demandeID,
		ConducteurID: conducteurID,
		Lat:          req.Lat,
		Lng:          req.Lng,
		Adresse:      strings.TrimSpace(req.Adresse),
		Timestamp:    ts.UTC(),
	}
}

// parseDateParam accepts RFC 3339 timestamps or plain dates.
func parseDateParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "date_depart_min must be RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}

// --- Service result → response ---

func toDemandePage(r *ports.ListDemandesResult) pageResponse[*domain.Demande] {
	items := r.Items
	if items == nil {
		items = []*domain.Demande{}
	}
	return pageResponse[*domain.Demande]{Items: items, Total: r.Total, Page: r.Page, Limit: r.Limit, TotalPages: r.TotalPages}
}

func toAnnoncePage(r *ports.ListAnnoncesResult) pageResponse[*domain.Annonce] {
	items := r.Items
	if items == nil {
		items = []*domain.Annonce{}
	}
	return pageResponse[*domain.Annonce]{Items: items, Total: r.Total, Page: r.Page, Limit: r.Limit, TotalPages: r.TotalPages}
}

func toTrackingResponse(v *ports.TrackingView) trackingResponse {
	return trackingResponse{
		NumeroSuivi: v.Suivi.NumeroSuivi,
		Statut:      v.Statut,
		Suivi:       v.Suivi,
	}
}
