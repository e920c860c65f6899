package domain

import "time"

// NotificationType classifies what happened to a Demande.
type NotificationType string

const (
	NotifDemandeRecue    NotificationType = "demande_recue"
	NotifDemandeAcceptee NotificationType = "demande_acceptee"
	NotifDemandeRefusee  NotificationType = "demande_refusee"
	NotifStatutChange    NotificationType = "statut_change"
	NotifDemandeAnnulee  NotificationType = "demande_annulee"
	NotifLivraison       NotificationType = "livraison"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        string           `json:"id" bson:"_id"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Type      NotificationType `json:"type" bson:"type"`
	Titre     string           `json:"titre" bson:"titre"`
	Message   string           `json:"message" bson:"message"`
	DemandeID string           `json:"demande_id,omitempty" bson:"demande_id,omitempty"`
	Lue       bool             `json:"lue" bson:"lue"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
