package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/transportconnect/marketplace/internal/api/metrics"
	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

// Retry bounds: versioned writes that lose a race, and tracking number collisions.
const (
	maxTransitionAttempts  = 3
	maxNumeroSuiviAttempts = 3
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type DemandeService struct {
	demandes ports.DemandeRepository
	events   ports.EventRepository
	annonces ports.AnnonceRepository
	users    ports.UserRepository
	notifier ports.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewDemandeService(
	demandes ports.DemandeRepository,
	events ports.EventRepository,
	annonces ports.AnnonceRepository,
	users ports.UserRepository,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *DemandeService {
	return &DemandeService{
		demandes: demandes,
		events:   events,
		annonces: annonces,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create submits a new demande in en_attente against an active annonce.
func (s *DemandeService) Create(ctx context.Context, in ports.CreateDemandeInput) (*domain.Demande, error) {
	annonce, err := s.annonces.FindByID(ctx, in.AnnonceID)
	if err != nil {
		return nil, fmt.Errorf("create demande: %w", err)
	}
	if annonce.Statut != domain.AnnonceActive {
		return nil, domain.ErrAnnonceInactive
	}
	if !annonce.AcceptsColisType(in.Colis.Type) {
		return nil, domain.ErrColisTypeRejected
	}
	if !annonce.Fits(in.Colis) {
		return nil, domain.ErrCapacityExceeded
	}

	_, err = s.demandes.FindOpen(ctx, in.ExpediteurID, in.AnnonceID)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateDemande
	case !errors.Is(err, domain.ErrDemandeNotFound):
		return nil, fmt.Errorf("create demande: %w", err)
	}

	paiement := in.ModePaiement
	if paiement == "" {
		paiement = domain.PaiementEspeces
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	d := &domain.Demande{
		ID:                uuid.NewString(),
		ExpediteurID:      in.ExpediteurID,
		ConducteurID:      annonce.ConducteurID,
		AnnonceID:         annonce.ID,
		Statut:            domain.StatusEnAttente,
		Colis:             in.Colis,
		PrixPropose:       in.PrixPropose,
		ModePaiement:      paiement,
		AdresseEnlevement: in.AdresseEnlevement,
		AdresseLivraison:  in.AdresseLivraison,
		Suivi: domain.Suivi{
			Etapes: []domain.Etape{{
				Statut:     domain.StatusEnAttente,
				Timestamp:  now,
				ActeurID:   in.ExpediteurID,
				ActeurRole: domain.RoleExpediteur,
			}},
			DateEnlevementEstimee: annonce.DateDepart,
			DateLivraisonEstimee:  annonce.DateArriveeEstimee,
		},
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.insertDemande(ctx, d); err != nil {
		s.logger.Error().Err(err).Msg("failed to create demande")
		return nil, err
	}

	metrics.DemandesCreatedTotal.Inc()
	s.logger.Info().
		Str("demande_id", d.ID).
		Str("numero_suivi", d.Suivi.NumeroSuivi).
		Str("annonce_id", d.AnnonceID).
		Msg("demande created")

	if err := s.annonces.IncrementCounters(ctx, d.AnnonceID, 1, 0); err != nil {
		s.logger.Warn().Err(err).Str("annonce_id", d.AnnonceID).Msg("failed to increment annonce demandes")
	}
	s.notify(ctx, d.ConducteurID, domain.NotifDemandeRecue, d,
		fmt.Sprintf("Nouvelle demande %s sur votre annonce", d.Suivi.NumeroSuivi))

	return d, nil
}

// Get returns a demande visible to the actor.
func (s *DemandeService) Get(ctx context.Context, id string, actor domain.Actor) (*domain.Demande, error) {
	d, err := s.demandes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.CanView(actor) {
		return nil, domain.ErrForbidden
	}
	return d, nil
}

// List returns the demandes the actor takes part in (all of them for admins).
func (s *DemandeService) List(ctx context.Context, in ports.ListDemandesInput) (*ports.ListDemandesResult, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	filter := ports.ListDemandesFilter{
		AnnonceID: in.AnnonceID,
		Statut:    in.Statut,
		Page:      page,
		Limit:     limit,
	}
	switch in.Actor.Role {
	case domain.RoleExpediteur:
		filter.ExpediteurID = in.Actor.ID
	case domain.RoleConducteur:
		filter.ConducteurID = in.Actor.ID
	case domain.RoleAdmin:
	default:
		return nil, domain.ErrForbidden
	}

	items, total, err := s.demandes.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list demandes: %w", err)
	}

	return &ports.ListDemandesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Respond is the driver's answer to a pending demande.
func (s *DemandeService) Respond(ctx context.Context, id string, actor domain.Actor, action, comment string) (*domain.Demande, error) {
	var to domain.DemandeStatus
	switch action {
	case ports.ReponseAccepter:
		to = domain.StatusAcceptee
	case ports.ReponseRefuser:
		to = domain.StatusRefusee
	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
	return s.transition(ctx, id, actor, to, comment)
}

// UpdateStatus drives the demande along the workflow.
func (s *DemandeService) UpdateStatus(ctx context.Context, id string, actor domain.Actor, to domain.DemandeStatus, comment string) (*domain.Demande, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, to)
	}
	return s.transition(ctx, id, actor, to, comment)
}

// Cancel moves the demande to annulee while no pickup has happened.
func (s *DemandeService) Cancel(ctx context.Context, id string, actor domain.Actor, motif string) (*domain.Demande, error) {
	return s.transition(ctx, id, actor, domain.StatusAnnulee, motif)
}

// transition reads the demande, applies the table-driven guard and writes the
// result conditionally on the version it read. A lost race re-runs the guard
// against the fresh document.
func (s *DemandeService) transition(ctx context.Context, id string, actor domain.Actor, to domain.DemandeStatus, comment string) (*domain.Demande, error) {
	var lastErr error
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		d, err := s.demandes.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("transition: %w", err)
		}

		from, version := d.Statut, d.Version
		etape, err := d.Transition(to, actor, comment, s.now())
		if err != nil {
			metrics.TransitionRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
			return nil, err
		}

		err = s.events.ApplyTransition(ctx, d, version, etape)
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			metrics.TransitionConflictsTotal.Inc()
			s.logger.Warn().
				Str("demande_id", id).
				Int("attempt", attempt).
				Msg("concurrent status update, retrying")
			lastErr = err
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("transition: %w", err)
		}
		d.Version = version + 1

		metrics.TransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
		s.logger.Info().
			Str("demande_id", d.ID).
			Str("from", string(from)).
			Str("to", string(to)).
			Str("actor", actor.ID).
			Msg("demande status changed")

		s.afterTransition(ctx, d, from, etape)
		return d, nil
	}
	return nil, fmt.Errorf("transition %s: %w", id, lastErr)
}

// afterTransition dispatches the side effects of an applied transition. None of
// them can undo the transition; failures are logged.
func (s *DemandeService) afterTransition(ctx context.Context, d *domain.Demande, from domain.DemandeStatus, etape domain.Etape) {
	audit := &domain.TransitionEvent{
		DemandeID:   d.ID,
		NumeroSuivi: d.Suivi.NumeroSuivi,
		From:        from,
		To:          etape.Statut,
		ActeurID:    etape.ActeurID,
		ActeurRole:  etape.ActeurRole,
		Commentaire: etape.Commentaire,
		Timestamp:   etape.Timestamp,
	}
	if err := s.events.InsertEvent(ctx, audit); err != nil {
		s.logger.Warn().Err(err).Str("demande_id", d.ID).Msg("failed to insert audit event")
	}

	numero := d.Suivi.NumeroSuivi
	switch etape.Statut {
	case domain.StatusAcceptee:
		if err := s.annonces.IncrementCounters(ctx, d.AnnonceID, 0, 1); err != nil {
			s.logger.Warn().Err(err).Str("annonce_id", d.AnnonceID).Msg("failed to increment accepted counter")
		}
		if err := s.users.IncrementStats(ctx, d.ConducteurID, 1, 0); err != nil {
			s.logger.Warn().Err(err).Str("user_id", d.ConducteurID).Msg("failed to increment driver stats")
		}
		s.notify(ctx, d.ExpediteurID, domain.NotifDemandeAcceptee, d,
			fmt.Sprintf("Votre demande %s a été acceptée", numero))

	case domain.StatusRefusee:
		s.notify(ctx, d.ExpediteurID, domain.NotifDemandeRefusee, d,
			fmt.Sprintf("Votre demande %s a été refusée", numero))

	case domain.StatusAnnulee:
		if from.IsActive() {
			if err := s.annonces.IncrementCounters(ctx, d.AnnonceID, 0, -1); err != nil {
				s.logger.Warn().Err(err).Str("annonce_id", d.AnnonceID).Msg("failed to decrement accepted counter")
			}
		}
		recipient := d.ExpediteurID
		if etape.ActeurRole == domain.RoleExpediteur {
			recipient = d.ConducteurID
		}
		s.notify(ctx, recipient, domain.NotifDemandeAnnulee, d,
			fmt.Sprintf("La demande %s a été annulée", numero))

	case domain.StatusEnCours, domain.StatusEnlevee, domain.StatusEnTransit:
		s.notify(ctx, d.ExpediteurID, domain.NotifStatutChange, d,
			fmt.Sprintf("Votre colis %s est maintenant %s", numero, etape.Statut))

	case domain.StatusLivree:
		if err := s.users.IncrementStats(ctx, d.ConducteurID, 0, 1); err != nil {
			s.logger.Warn().Err(err).Str("user_id", d.ConducteurID).Msg("failed to increment delivery stats")
		}
		s.notify(ctx, d.ExpediteurID, domain.NotifLivraison, d,
			fmt.Sprintf("Votre colis %s a été livré. Vous pouvez maintenant évaluer le conducteur.", numero))
	}
}

// Track returns the public tracking view of a demande.
func (s *DemandeService) Track(ctx context.Context, numeroSuivi string) (*ports.TrackingView, error) {
	d, err := s.demandes.FindByNumeroSuivi(ctx, strings.ToUpper(strings.TrimSpace(numeroSuivi)))
	if err != nil {
		return nil, err
	}
	return &ports.TrackingView{Statut: d.Statut, Suivi: d.Suivi}, nil
}

// AddMessage appends to the communication log of a demande.
func (s *DemandeService) AddMessage(ctx context.Context, id string, actor domain.Actor, message string) (*domain.Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	d, err := s.demandes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsParty(actor) {
		return nil, domain.ErrForbidden
	}

	msg := domain.Message{
		AuteurID:  actor.ID,
		Message:   message,
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
		Type:      domain.MessageTexte,
	}
	if err := s.demandes.AppendMessage(ctx, id, msg); err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	return &msg, nil
}

// Evaluate records the shipper's rating of a delivered demande and folds it
// into the driver's average.
func (s *DemandeService) Evaluate(ctx context.Context, id string, actor domain.Actor, note int, comment string) (*domain.Evaluation, error) {
	if note < 1 || note > 5 {
		return nil, fmt.Errorf("%w: note must be between 1 and 5", domain.ErrInvalidInput)
	}

	d, err := s.demandes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleExpediteur || !d.IsParty(actor) {
		return nil, domain.ErrForbidden
	}
	if d.Statut != domain.StatusLivree {
		return nil, domain.ErrEvaluationNotAllowed
	}
	if d.Evaluation != nil {
		return nil, domain.ErrAlreadyEvaluated
	}

	ev := domain.Evaluation{
		Note:        note,
		Commentaire: strings.TrimSpace(comment),
		Date:        s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.demandes.SetEvaluation(ctx, id, ev); err != nil {
		return nil, err
	}
	if err := s.users.AddRating(ctx, d.ConducteurID, note); err != nil {
		s.logger.Warn().Err(err).Str("user_id", d.ConducteurID).Msg("failed to update driver rating")
	}
	return &ev, nil
}

func (s *DemandeService) notify(ctx context.Context, userID string, typ domain.NotificationType, d *domain.Demande, message string) {
	if err := s.notifier.Notify(ctx, userID, typ, d, message); err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", userID).
			Str("type", string(typ)).
			Str("demande_id", d.ID).
			Msg("failed to send notification")
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "other"
	}
}

// insertDemande assigns a fresh tracking number to d and stores it, drawing a
// new number when the unique index reports a collision.
func (s *DemandeService) insertDemande(ctx context.Context, d *domain.Demande) error {
	var err error
	for attempt := 1; attempt <= maxNumeroSuiviAttempts; attempt++ {
		d.Suivi.NumeroSuivi = generateNumeroSuivi()
		err = s.demandes.Create(ctx, d)
		if !errors.Is(err, domain.ErrNumeroSuiviTaken) {
			return err
		}
		s.logger.Warn().
			Str("numero_suivi", d.Suivi.NumeroSuivi).
			Int("attempt", attempt).
			Msg("tracking number collision")
	}
	return fmt.Errorf("create demande: %w", err)
}

const numeroSuiviAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateNumeroSuivi returns a tracking number TC-XXXXXXXX drawn uniformly
// from uppercase letters and digits.
func generateNumeroSuivi() string {
	const size = 8
	// Largest multiple of the alphabet length below 256, to keep the draw unbiased.
	limit := byte(256 - 256%len(numeroSuiviAlphabet))

	out := make([]byte, 0, size)
	buf := make([]byte, size*2)
	for len(out) < size {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, numeroSuiviAlphabet[int(b)%len(numeroSuiviAlphabet)])
			if len(out) == size {
				break
			}
		}
	}
	return "TC-" + string(out)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
