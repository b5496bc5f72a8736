package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
	"github.com/claimdesk/claimdesk/internal/infrastructure/persistence/sqlite"
)

// NotificationRepository implements port.NotificationRepository on SQLite
type NotificationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlite.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, claim_id, message, is_read, claim_description, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.ClaimID,
		n.Message,
		n.IsRead,
		n.ClaimDescription,
		n.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.String("id", n.ID), zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by id
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	query := `
		SELECT id, user_id, claim_id, message, is_read, claim_description, timestamp
		FROM notifications
		WHERE id = ?
	`

	var n entity.Notification
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.ClaimID,
		&n.Message,
		&n.IsRead,
		&n.ClaimDescription,
		&n.Timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, port.ErrNotificationNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get notification", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &n, nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, claim_id, message, is_read, claim_description, timestamp
		FROM notifications
		WHERE user_id = ?
		ORDER BY timestamp DESC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.ClaimID,
			&n.Message,
			&n.IsRead,
			&n.ClaimDescription,
			&n.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// MarkRead marks a single notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return port.ErrNotificationNotFound
	}

	return nil
}

// MarkAllRead marks every notification of a user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Executor(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		r.logger.Error("Failed to mark notifications read", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

// CountUnread returns the number of unread notifications for a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count unread notifications", zap.String("user_id", userID), zap.Error(err))
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
