package domain

import "errors"

var (
	ErrDemandeNotFound      = errors.New("demande not found")
	ErrAnnonceNotFound      = errors.New("annonce not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")

	ErrForbidden         = errors.New("access forbidden")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrConcurrentUpdate  = errors.New("demande was modified concurrently")

	ErrAnnonceInactive          = errors.New("annonce inactive")
	ErrCapacityExceeded         = errors.New("package exceeds annonce capacity")
	ErrDuplicateDemande         = errors.New("an open demande already exists for this annonce")
	ErrNumeroSuiviTaken         = errors.New("tracking number already in use")
	ErrAnnonceHasActiveDemandes = errors.New("annonce has accepted or in-progress demandes")
	ErrEvaluationNotAllowed     = errors.New("only delivered demandes can be evaluated")
	ErrAlreadyEvaluated         = errors.New("demande already evaluated")
	ErrPositionNotAllowed       = errors.New("position updates require a demande in progress")
	ErrColisTypeRejected        = errors.New("annonce does not accept this package type")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")
	ErrPositionQueueFull  = errors.New("position queue is full, retry later")
	ErrInvalidInput       = errors.New("invalid input")
)
