package domain

import "time"

// TransitionEvent is the audit record of one applied status change.
type TransitionEvent struct {
	DemandeID   string
	NumeroSuivi string
	From        DemandeStatus
	To          DemandeStatus
	ActeurID    string
	ActeurRole  Role
	Commentaire string
	Timestamp   time.Time
}
