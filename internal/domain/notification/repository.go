package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error)

	// MarkRead flags one notification; ErrNotificationNotFound when missing.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flags every unread notification for the user.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
