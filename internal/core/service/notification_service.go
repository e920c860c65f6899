package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/transportconnect/marketplace/internal/api/metrics"
	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

const notificationListLimit = 50

var notificationTitles = map[domain.NotificationType]string{
	domain.NotifDemandeRecue:    "Nouvelle demande",
	domain.NotifDemandeAcceptee: "Demande acceptée",
	domain.NotifDemandeRefusee:  "Demande refusée",
	domain.NotifStatutChange:    "Suivi mis à jour",
	domain.NotifDemandeAnnulee:  "Demande annulée",
	domain.NotifLivraison:       "Colis livré",
}

// NotificationService stores in-app notifications.
type NotificationService struct {
	repo   ports.NotificationRepository
	logger zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, logger zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Notify persists a notification for userID about the demande.
func (s *NotificationService) Notify(ctx context.Context, userID string, typ domain.NotificationType, d *domain.Demande, message string) error {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Titre:     notificationTitles[typ],
		Message:   message,
		Lue:       false,
		CreatedAt: time.Now().UTC(),
	}
	if d != nil {
		n.DemandeID = d.ID
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsSentTotal.WithLabelValues(string(typ)).Inc()
	s.logger.Debug().Str("user_id", userID).Str("type", string(typ)).Msg("notification stored")
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, notificationListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}
