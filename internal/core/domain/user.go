package domain

import "time"

// Statistiques are the per-user counters maintained by the workflow.
type Statistiques struct {
	DemandesAcceptees    int     `json:"demandes_acceptees" bson:"demandes_acceptees"`
	LivraisonsEffectuees int     `json:"livraisons_effectuees" bson:"livraisons_effectuees"`
	NoteMoyenne          float64 `json:"note_moyenne" bson:"note_moyenne"`
	NombreEvaluations    int     `json:"nombre_evaluations" bson:"nombre_evaluations"`
}

// User models an authenticated actor in the system.
type User struct {
	ID           string       `json:"id"`
	Nom          string       `json:"nom"`
	Prenom       string       `json:"prenom"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Telephone    string       `json:"telephone,omitempty"`
	Role         Role         `json:"role"`
	Statistiques Statistiques `json:"statistiques"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Actor returns the workflow identity of the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
