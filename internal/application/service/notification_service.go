package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

// NotificationService creates notifications for claim events and
// manages their read state. Fan-out rules:
//
//   - claim submitted: every listed approver
//   - approver decision changed: the submitter only
//   - chat message: the other party (submitter -> all approvers except
//     the sender, approver -> the submitter only)
type NotificationService interface {
	NotifyClaimSubmitted(ctx context.Context, claim *entity.Claim) error
	NotifyDecision(ctx context.Context, claim *entity.Claim, approverName string, decision entity.ClaimStatus) error
	NotifyChatMessage(ctx context.Context, claim *entity.Claim, message entity.ChatMessage) error

	ListForUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID string) (*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID string) ([]*entity.Notification, error)
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// NotifyClaimSubmitted notifies every listed approver about a new claim
func (s *notificationServiceImpl) NotifyClaimSubmitted(ctx context.Context, claim *entity.Claim) error {
	message := fmt.Sprintf("%s submitted a %s claim for ₹%.2f for your approval.",
		claim.SubmittedBy.Name, claim.Category, claim.Amount)

	for _, approver := range claim.Approvers {
		if err := s.create(ctx, approver.ID, claim, message); err != nil {
			return fmt.Errorf("notify approver %s: %w", approver.ID, err)
		}
	}

	s.logger.Info("Submission notifications created",
		"claim_id", claim.ID,
		"approver_count", len(claim.Approvers),
	)
	return nil
}

// NotifyDecision notifies the submitter that an approver's verdict changed
func (s *notificationServiceImpl) NotifyDecision(ctx context.Context, claim *entity.Claim, approverName string, decision entity.ClaimStatus) error {
	message := fmt.Sprintf("%s has %s your %s claim for ₹%.2f.",
		approverName, strings.ToLower(string(decision)), claim.Category, claim.Amount)

	if err := s.create(ctx, claim.SubmittedBy.ID, claim, message); err != nil {
		return fmt.Errorf("notify submitter: %w", err)
	}

	s.logger.Info("Decision notification created",
		"claim_id", claim.ID,
		"recipient_id", claim.SubmittedBy.ID,
		"decision", decision,
	)
	return nil
}

// NotifyChatMessage notifies the other side of the conversation
func (s *notificationServiceImpl) NotifyChatMessage(ctx context.Context, claim *entity.Claim, message entity.ChatMessage) error {
	if claim.IsSubmitter(message.SenderID) {
		text := fmt.Sprintf("%s sent a message on a %s claim.", claim.SubmittedBy.Name, claim.Category)
		for _, approver := range claim.Approvers {
			if approver.ID == message.SenderID {
				continue
			}
			if err := s.create(ctx, approver.ID, claim, text); err != nil {
				return fmt.Errorf("notify approver %s: %w", approver.ID, err)
			}
		}
		return nil
	}

	text := fmt.Sprintf("%s sent a message on your %s claim.", message.SenderName, claim.Category)
	if err := s.create(ctx, claim.SubmittedBy.ID, claim, text); err != nil {
		return fmt.Errorf("notify submitter: %w", err)
	}
	return nil
}

// ListForUser returns the user's notifications, newest first
func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list notifications", "error", err, "user_id", userID)
		return nil, err
	}
	return notifications, nil
}

// CountUnread returns the number of unread notifications for the user
func (s *notificationServiceImpl) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", "error", err, "user_id", userID)
		return 0, err
	}
	return count, nil
}

// MarkRead marks one notification as read. Marking an already-read
// notification again is a no-op.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID string) (*entity.Notification, error) {
	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		s.logger.Error("Failed to mark notification read", "error", err, "notification_id", notificationID)
		return nil, err
	}
	return s.notificationRepo.GetByID(ctx, notificationID)
}

// MarkAllRead marks every unread notification of the user as read and
// returns the full updated set.
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID string) ([]*entity.Notification, error) {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		s.logger.Error("Failed to mark all notifications read", "error", err, "user_id", userID)
		return nil, err
	}
	return s.notificationRepo.ListByUser(ctx, userID)
}

func (s *notificationServiceImpl) create(ctx context.Context, recipientID string, claim *entity.Claim, message string) error {
	return s.notificationRepo.Create(ctx, &entity.Notification{
		ID:               uuid.NewString(),
		UserID:           recipientID,
		ClaimID:          claim.ID,
		Message:          message,
		IsRead:           false,
		ClaimDescription: claim.DisplayDescription(),
		Timestamp:        time.Now(),
	})
}
