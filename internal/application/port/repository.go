package port

import (
	"context"
	"errors"

	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

var (
	// ErrClaimNotFound means the referenced claim id does not exist
	ErrClaimNotFound = errors.New("claim not found")

	// ErrNotificationNotFound means the referenced notification id does not exist
	ErrNotificationNotFound = errors.New("notification not found")
)

// ClaimRepository defines persistence operations for Claim
type ClaimRepository interface {
	// Create persists a new claim
	Create(ctx context.Context, claim *entity.Claim) error

	// GetByID retrieves a claim; returns ErrClaimNotFound when absent
	GetByID(ctx context.Context, id string) (*entity.Claim, error)

	// Update replaces the stored claim; returns ErrClaimNotFound when absent
	Update(ctx context.Context, claim *entity.Claim) error

	// ListForUser returns claims the user submitted or is an approver
	// of, newest first
	ListForUser(ctx context.Context, userID string) ([]*entity.Claim, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	// Create persists a new notification
	Create(ctx context.Context, notification *entity.Notification) error

	// GetByID retrieves a notification; returns ErrNotificationNotFound when absent
	GetByID(ctx context.Context, id string) (*entity.Notification, error)

	// ListByUser returns the user's notifications sorted by timestamp descending
	ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error)

	// MarkRead flips a notification to read; a no-op if already read
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead flips every unread notification of the user to read
	MarkAllRead(ctx context.Context, userID string) error

	// CountUnread returns the number of unread notifications for the user
	CountUnread(ctx context.Context, userID string) (int, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
