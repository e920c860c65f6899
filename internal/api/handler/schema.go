package handler

import (
	"time"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// pageResponse wraps one page of a list endpoint.
type pageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// --- Shared value types ---

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type addressRequest struct {
	Adresse     string             `json:"adresse"      validate:"required"`
	Ville       string             `json:"ville"        validate:"required"`
	CodePostal  string             `json:"code_postal"`
	Coordonnees coordinatesRequest `json:"coordonnees"`
}

type dimensionsRequest struct {
	LongueurCm float64 `json:"longueur_cm" validate:"gte=0"`
	LargeurCm  float64 `json:"largeur_cm"  validate:"gte=0"`
	HauteurCm  float64 `json:"hauteur_cm"  validate:"gte=0"`
}

type colisRequest struct {
	Dimensions  dimensionsRequest `json:"dimensions"`
	PoidsKg     float64           `json:"poids_kg"    validate:"required,gt=0"`
	Type        string            `json:"type"        validate:"max=50"`
	Description string            `json:"description" validate:"max=500"`
}

// --- Auth ---

type registerRequest struct {
	Nom       string `json:"nom"       validate:"required"`
	Prenom    string `json:"prenom"    validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	Telephone string `json:"telephone"`
	Role      string `json:"role"      validate:"required,oneof=conducteur expediteur"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Demandes ---

type createDemandeRequest struct {
	AnnonceID         string         `json:"annonce_id"         validate:"required"`
	Colis             colisRequest   `json:"colis"`
	PrixPropose       float64        `json:"prix_propose"       validate:"gte=0"`
	ModePaiement      string         `json:"mode_paiement"      validate:"omitempty,oneof=especes carte virement"`
	AdresseEnlevement addressRequest `json:"adresse_enlevement"`
	AdresseLivraison  addressRequest `json:"adresse_livraison"`
}

type listDemandesQuery struct {
	Statut    string `query:"statut"`
	AnnonceID string `query:"annonce_id"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}

type respondRequest struct {
	Action      string `json:"action"      validate:"required,oneof=accepter refuser"`
	Commentaire string `json:"commentaire" validate:"max=500"`
}

type statusRequest struct {
	Statut      string `json:"statut"      validate:"required"`
	Commentaire string `json:"commentaire" validate:"max=500"`
}

type cancelRequest struct {
	Motif string `json:"motif" validate:"max=500"`
}

type messageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type evaluationRequest struct {
	Note        int    `json:"note"        validate:"required,min=1,max=5"`
	Commentaire string `json:"commentaire" validate:"max=1000"`
}

type trackingResponse struct {
	NumeroSuivi string               `json:"numero_suivi"`
	Statut      domain.DemandeStatus `json:"statut"`
	Suivi       domain.Suivi         `json:"suivi"`
}

// --- Positions ---

type positionRequest struct {
	Lat       float64   `json:"lat"       validate:"latitude"`
	Lng       float64   `json:"lng"       validate:"longitude"`
	Adresse   string    `json:"adresse"   validate:"max=300"`
	Timestamp time.Time `json:"timestamp"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

// --- Annonces ---

type capaciteRequest struct {
	PoidsMaxKg  float64 `json:"poids_max_kg"  validate:"gte=0"`
	VolumeMaxM3 float64 `json:"volume_max_m3" validate:"gte=0"`
}

type createAnnonceRequest struct {
	LieuDepart           addressRequest  `json:"lieu_depart"`
	LieuArrivee          addressRequest  `json:"lieu_arrivee"`
	EtapesIntermediaires []string        `json:"etapes_intermediaires"`
	DateDepart           time.Time       `json:"date_depart"          validate:"required"`
	DateArriveeEstimee   time.Time       `json:"date_arrivee_estimee" validate:"omitempty,gtfield=DateDepart"`
	Capacite             capaciteRequest `json:"capacite"`
	TypesColisAcceptes   []string        `json:"types_colis_acceptes"`
	PrixParKg            float64         `json:"prix_par_kg"          validate:"gte=0"`
	Description          string          `json:"description"          validate:"max=1000"`
}

type listAnnoncesQuery struct {
	VilleDepart   string `query:"ville_depart"`
	VilleArrivee  string `query:"ville_arrivee"`
	DateDepartMin string `query:"date_depart_min"`
	Statut        string `query:"statut"`
	ConducteurID  string `query:"conducteur_id"`
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
}

type annonceStatusRequest struct {
	Statut string `json:"statut" validate:"required,oneof=active inactive"`
}

// --- Stats ---

type userStatsResponse struct {
	Role         domain.Role         `json:"role"`
	ParStatut    map[string]int64    `json:"par_statut"`
	Total        int64               `json:"total"`
	MontantLivre float64             `json:"montant_livre"`
	Statistiques domain.Statistiques `json:"statistiques"`
}

type platformStatsResponse struct {
	UtilisateursParRole map[string]int64 `json:"utilisateurs_par_role"`
	AnnoncesParStatut   map[string]int64 `json:"annonces_par_statut"`
	DemandesParStatut   map[string]int64 `json:"demandes_par_statut"`
}
