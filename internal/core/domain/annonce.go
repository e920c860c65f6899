package domain

import "time"

// AnnonceStatus is the visibility state of an Annonce.
type AnnonceStatus string

const (
	AnnonceActive   AnnonceStatus = "active"
	AnnonceInactive AnnonceStatus = "inactive"
)

// Capacite is what a driver can carry on a route.
type Capacite struct {
	PoidsMaxKg  float64 `json:"poids_max_kg" bson:"poids_max_kg"`
	VolumeMaxM3 float64 `json:"volume_max_m3" bson:"volume_max_m3"`
}

// Annonce is a driver-posted transport route.
type Annonce struct {
	ID                   string        `json:"id" bson:"_id"`
	ConducteurID         string        `json:"conducteur_id" bson:"conducteur_id"`
	LieuDepart           Adresse       `json:"lieu_depart" bson:"lieu_depart"`
	LieuArrivee          Adresse       `json:"lieu_arrivee" bson:"lieu_arrivee"`
	EtapesIntermediaires []string      `json:"etapes_intermediaires,omitempty" bson:"etapes_intermediaires,omitempty"`
	DateDepart           time.Time     `json:"date_depart" bson:"date_depart"`
	DateArriveeEstimee   time.Time     `json:"date_arrivee_estimee" bson:"date_arrivee_estimee"`
	Capacite             Capacite      `json:"capacite" bson:"capacite"`
	TypesColisAcceptes   []string      `json:"types_colis_acceptes,omitempty" bson:"types_colis_acceptes,omitempty"`
	PrixParKg            float64       `json:"prix_par_kg" bson:"prix_par_kg"`
	Description          string        `json:"description,omitempty" bson:"description,omitempty"`
	Statut               AnnonceStatus `json:"statut" bson:"statut"`
	NombreDemandes       int           `json:"nombre_demandes" bson:"nombre_demandes"`
	DemandesAcceptees    int           `json:"demandes_acceptees" bson:"demandes_acceptees"`
	CreatedAt            time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" bson:"updated_at"`
}

// AcceptsColisType reports whether the route takes packages of the given type.
// An empty list accepts every type.
func (a *Annonce) AcceptsColisType(t string) bool {
	if len(a.TypesColisAcceptes) == 0 {
		return true
	}
	for _, accepted := range a.TypesColisAcceptes {
		if accepted == t {
			return true
		}
	}
	return false
}

// Fits reports whether the package fits the route's declared capacity.
// A zero limit means the driver did not declare one.
func (a *Annonce) Fits(c Colis) bool {
	if a.Capacite.PoidsMaxKg > 0 && c.PoidsKg > a.Capacite.PoidsMaxKg {
		return false
	}
	if a.Capacite.VolumeMaxM3 > 0 && c.Dimensions.VolumeM3() > a.Capacite.VolumeMaxM3 {
		return false
	}
	return true
}
