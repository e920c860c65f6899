package domain

import (
	"fmt"
	"time"
)

// DemandeStatus represents the lifecycle state of a Demande.
type DemandeStatus string

const (
	StatusEnAttente DemandeStatus = "en_attente"
	StatusAcceptee  DemandeStatus = "acceptee"
	StatusRefusee   DemandeStatus = "refusee"
	StatusEnCours   DemandeStatus = "en_cours"
	StatusEnlevee   DemandeStatus = "enlevee"
	StatusEnTransit DemandeStatus = "en_transit"
	StatusLivree    DemandeStatus = "livree"
	StatusAnnulee   DemandeStatus = "annulee"
)

// AllStatuses lists the state set in workflow order.
var AllStatuses = []DemandeStatus{
	StatusEnAttente,
	StatusAcceptee,
	StatusRefusee,
	StatusEnCours,
	StatusEnlevee,
	StatusEnTransit,
	StatusLivree,
	StatusAnnulee,
}

// transitionRule is one edge of the workflow and the roles allowed to take it.
type transitionRule struct {
	to    DemandeStatus
	roles []Role
}

// validTransitions is the single authority on legal status changes, including who
// may take each edge. No edge reaches annulee once the package has been picked up.
var validTransitions = map[DemandeStatus][]transitionRule{
	StatusEnAttente: {
		{to: StatusAcceptee, roles: []Role{RoleConducteur}},
		{to: StatusRefusee, roles: []Role{RoleConducteur}},
		{to: StatusAnnulee, roles: []Role{RoleExpediteur}},
	},
	StatusAcceptee: {
		{to: StatusEnCours, roles: []Role{RoleConducteur}},
		{to: StatusAnnulee, roles: []Role{RoleConducteur, RoleExpediteur}},
	},
	StatusEnCours: {
		{to: StatusEnlevee, roles: []Role{RoleConducteur}},
		{to: StatusAnnulee, roles: []Role{RoleConducteur, RoleExpediteur}},
	},
	StatusEnlevee: {
		{to: StatusEnTransit, roles: []Role{RoleConducteur}},
	},
	StatusEnTransit: {
		{to: StatusLivree, roles: []Role{RoleConducteur}},
	},
}

// IsValid reports whether s belongs to the state set.
func (s DemandeStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s DemandeStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsActive reports whether a driver has committed to the Demande and it is not finished.
func (s DemandeStatus) IsActive() bool {
	switch s {
	case StatusAcceptee, StatusEnCours, StatusEnlevee, StatusEnTransit:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s DemandeStatus) CanTransitionTo(next DemandeStatus) bool {
	_, ok := s.rule(next)
	return ok
}

// Cancellable reports whether the Demande can still be cancelled from s.
func (s DemandeStatus) Cancellable() bool {
	return s.CanTransitionTo(StatusAnnulee)
}

// AllowedTargetsFor returns the statuses the role may move s to.
func (s DemandeStatus) AllowedTargetsFor(role Role) []DemandeStatus {
	var out []DemandeStatus
	for _, r := range validTransitions[s] {
		if r.allows(role) {
			out = append(out, r.to)
		}
	}
	return out
}

// AllowedTargets returns the statuses reachable from s.
func (s DemandeStatus) AllowedTargets() []DemandeStatus {
	rules := validTransitions[s]
	out := make([]DemandeStatus, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.to)
	}
	return out
}

func (s DemandeStatus) rule(next DemandeStatus) (transitionRule, bool) {
	for _, r := range validTransitions[s] {
		if r.to == next {
			return r, true
		}
	}
	return transitionRule{}, false
}

// IllegalTransitionError identifies a status change absent from the transition table.
type IllegalTransitionError struct {
	From DemandeStatus
	To   DemandeStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("Impossible de passer de %q à %q", e.From, e.To)
}

// Is makes errors.Is(err, ErrIllegalTransition) match.
func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Adresse represents a physical location.
type Adresse struct {
	Adresse     string      `json:"adresse" bson:"adresse"`
	Ville       string      `json:"ville" bson:"ville"`
	CodePostal  string      `json:"code_postal" bson:"code_postal"`
	Coordonnees Coordinates `json:"coordonnees" bson:"coordonnees"`
}

// Dimensions represents the physical size of a package.
type Dimensions struct {
	LongueurCm float64 `json:"longueur_cm" bson:"longueur_cm"`
	LargeurCm  float64 `json:"largeur_cm" bson:"largeur_cm"`
	HauteurCm  float64 `json:"hauteur_cm" bson:"hauteur_cm"`
}

// VolumeM3 returns the package volume in cubic metres.
func (d Dimensions) VolumeM3() float64 {
	return d.LongueurCm * d.LargeurCm * d.HauteurCm / 1_000_000
}

// Colis describes what is being shipped.
type Colis struct {
	Dimensions  Dimensions `json:"dimensions" bson:"dimensions"`
	PoidsKg     float64    `json:"poids_kg" bson:"poids_kg"`
	Type        string     `json:"type" bson:"type"`
	Description string     `json:"description" bson:"description"`
}

const (
	PaiementEspeces  = "especes"
	PaiementCarte    = "carte"
	PaiementVirement = "virement"
)

// Etape records a single status transition on a Demande.
type Etape struct {
	Statut      DemandeStatus `json:"statut" bson:"statut"`
	Timestamp   time.Time     `json:"timestamp" bson:"timestamp"`
	ActeurID    string        `json:"acteur_id" bson:"acteur_id"`
	ActeurRole  Role          `json:"acteur_role" bson:"acteur_role"`
	Commentaire string        `json:"commentaire,omitempty" bson:"commentaire,omitempty"`
}

// Position is the last known location of a package in transit.
type Position struct {
	Lat       float64   `json:"lat" bson:"lat"`
	Lng       float64   `json:"lng" bson:"lng"`
	Adresse   string    `json:"adresse,omitempty" bson:"adresse,omitempty"`
	MiseAJour time.Time `json:"mise_a_jour" bson:"mise_a_jour"`
}

// Suivi is the tracking sub-record exposed publicly by tracking number.
type Suivi struct {
	NumeroSuivi           string     `json:"numero_suivi" bson:"numero_suivi"`
	Etapes                []Etape    `json:"etapes" bson:"etapes"`
	PositionActuelle      *Position  `json:"position_actuelle,omitempty" bson:"position_actuelle,omitempty"`
	DateEnlevementEstimee time.Time  `json:"date_enlevement_estimee" bson:"date_enlevement_estimee"`
	DateEnlevementReelle  *time.Time `json:"date_enlevement_reelle,omitempty" bson:"date_enlevement_reelle,omitempty"`
	DateLivraisonEstimee  time.Time  `json:"date_livraison_estimee" bson:"date_livraison_estimee"`
	DateLivraisonReelle   *time.Time `json:"date_livraison_reelle,omitempty" bson:"date_livraison_reelle,omitempty"`
}

const (
	MessageTexte   = "texte"
	MessageSysteme = "systeme"
)

// Message is one entry of a Demande's communication log.
type Message struct {
	AuteurID  string    `json:"auteur_id" bson:"auteur_id"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Type      string    `json:"type" bson:"type"`
}

// Evaluation is the shipper's rating of a completed delivery.
type Evaluation struct {
	Note        int       `json:"note" bson:"note"`
	Commentaire string    `json:"commentaire,omitempty" bson:"commentaire,omitempty"`
	Date        time.Time `json:"date" bson:"date"`
}

// Demande is a shipper's offer to ship one package on one Annonce.
type Demande struct {
	ID                string        `json:"id" bson:"_id"`
	ExpediteurID      string        `json:"expediteur_id" bson:"expediteur_id"`
	ConducteurID      string        `json:"conducteur_id" bson:"conducteur_id"`
	AnnonceID         string        `json:"annonce_id" bson:"annonce_id"`
	Statut            DemandeStatus `json:"statut" bson:"statut"`
	Colis             Colis         `json:"colis" bson:"colis"`
	PrixPropose       float64       `json:"prix_propose" bson:"prix_propose"`
	ModePaiement      string        `json:"mode_paiement" bson:"mode_paiement"`
	AdresseEnlevement Adresse       `json:"adresse_enlevement" bson:"adresse_enlevement"`
	AdresseLivraison  Adresse       `json:"adresse_livraison" bson:"adresse_livraison"`
	Suivi             Suivi         `json:"suivi" bson:"suivi"`
	Messages          []Message     `json:"messages" bson:"messages"`
	Evaluation        *Evaluation   `json:"evaluation,omitempty" bson:"evaluation,omitempty"`
	Version           int64         `json:"version" bson:"version"`
	CreatedAt         time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" bson:"updated_at"`
}

// Actor is the authenticated user attempting an operation.
type Actor struct {
	ID   string
	Role Role
}

// IsParty reports whether the actor takes part in the Demande in the role they hold.
func (d *Demande) IsParty(a Actor) bool {
	switch a.Role {
	case RoleConducteur:
		return d.ConducteurID == a.ID
	case RoleExpediteur:
		return d.ExpediteurID == a.ID
	}
	return false
}

// CanView reports whether the actor may read the full Demande.
func (d *Demande) CanView(a Actor) bool {
	return a.Role == RoleAdmin || d.IsParty(a)
}

// LastEtape returns the most recent tracking event, if any.
func (d *Demande) LastEtape() (Etape, bool) {
	if len(d.Suivi.Etapes) == 0 {
		return Etape{}, false
	}
	return d.Suivi.Etapes[len(d.Suivi.Etapes)-1], true
}

// Transition moves the Demande to the target status and appends the matching
// etape. Legality is the table restricted to the actor's role: an edge the role
// may not take is an illegal transition, and only non-parties are forbidden.
// On error the Demande is left untouched.
func (d *Demande) Transition(to DemandeStatus, actor Actor, comment string, now time.Time) (Etape, error) {
	if !d.IsParty(actor) {
		return Etape{}, ErrForbidden
	}
	if rule, ok := d.Statut.rule(to); !ok || !rule.allows(actor.Role) {
		return Etape{}, &IllegalTransitionError{From: d.Statut, To: to}
	}

	ts := now.UTC().Truncate(time.Millisecond)
	if last, ok := d.LastEtape(); ok && !ts.After(last.Timestamp) {
		ts = last.Timestamp.Add(time.Millisecond)
	}

	etape := Etape{
		Statut:      to,
		Timestamp:   ts,
		ActeurID:    actor.ID,
		ActeurRole:  actor.Role,
		Commentaire: comment,
	}

	d.Statut = to
	d.Suivi.Etapes = append(d.Suivi.Etapes, etape)
	switch to {
	case StatusEnlevee:
		d.Suivi.DateEnlevementReelle = &ts
	case StatusLivree:
		d.Suivi.DateLivraisonReelle = &ts
	}
	d.UpdatedAt = ts
	return etape, nil
}

func (r transitionRule) allows(role Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}
