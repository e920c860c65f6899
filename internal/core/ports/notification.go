package ports

import (
	"context"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*domain.Notification, error)
	// MarkRead flags the notification as read if it belongs to userID.
	MarkRead(ctx context.Context, id, userID string) error
}

// Notifier delivers a notification about a demande to one user.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ domain.NotificationType, demande *domain.Demande, message string) error
}

// NotificationService is the use-case surface for a user's notifications.
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}
