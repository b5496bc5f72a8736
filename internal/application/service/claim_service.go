package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/domain/approval"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ClaimService is the claim mutation surface. Every mutation executes
// as a single atomic unit: a per-claim lock serializes the
// read-modify-write, and the claim update plus its notifications share
// one transaction so a failed operation leaves prior state intact.
type ClaimService interface {
	SubmitClaim(ctx context.Context, claim *entity.Claim, submitter entity.Identity) (*entity.Claim, error)
	EditClaim(ctx context.Context, claim *entity.Claim) (*entity.Claim, error)
	RecordApproverDecision(ctx context.Context, claimID, approverID, approverName string, decision entity.ClaimStatus) (*entity.Claim, error)
	AddChatMessage(ctx context.Context, claimID string, sender entity.Identity, content string) (*entity.Claim, error)

	GetClaim(ctx context.Context, claimID string) (*entity.Claim, error)
	ListClaimsForUser(ctx context.Context, userID string) ([]*entity.Claim, error)
	MarkViewed(ctx context.Context, claimID, viewerID string) (*entity.Claim, error)
}

type claimServiceImpl struct {
	claimRepo     port.ClaimRepository
	notifications NotificationService
	txManager     port.TransactionManager
	logger        Logger

	// locks serializes mutations per claim id; locks never span claims
	locks sync.Map
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claimRepo port.ClaimRepository,
	notifications NotificationService,
	txManager port.TransactionManager,
	logger Logger,
) ClaimService {
	return &claimServiceImpl{
		claimRepo:     claimRepo,
		notifications: notifications,
		txManager:     txManager,
		logger:        logger,
	}
}

// SubmitClaim persists a new claim and notifies every listed approver
func (s *claimServiceImpl) SubmitClaim(ctx context.Context, claim *entity.Claim, submitter entity.Identity) (*entity.Claim, error) {
	now := time.Now()

	claim.ID = uuid.NewString()
	claim.SubmittedBy = submitter
	claim.ChatHistory = []entity.ChatMessage{}
	claim.HasStatusChanged = false
	claim.CreatedAt = now
	claim.UpdatedAt = now

	// Fresh approval cycle regardless of what the caller sent
	approval.ResetApprovals(claim)

	if claim.Category == entity.CategoryFood {
		claim.Amount = entity.FoodAmount(claim.MealTypes)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Create(txCtx, claim); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}
		if err := s.notifications.NotifyClaimSubmitted(txCtx, claim); err != nil {
			return fmt.Errorf("fan out submission: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit claim", "error", err, "submitter_id", submitter.ID)
		return nil, err
	}

	s.logger.Info("Claim submitted",
		"claim_id", claim.ID,
		"category", claim.Category,
		"submitter_id", submitter.ID,
		"approver_count", len(claim.Approvers),
	)
	return claim, nil
}

// EditClaim updates a claim's fields and re-opens its approval cycle.
// Approvers are expected to re-review via their pending queue, so no
// notifications are emitted.
func (s *claimServiceImpl) EditClaim(ctx context.Context, claim *entity.Claim) (*entity.Claim, error) {
	unlock := s.lock(claim.ID)
	defer unlock()

	original, err := s.claimRepo.GetByID(ctx, claim.ID)
	if err != nil {
		s.logger.Error("Claim not found for editing", "error", err, "claim_id", claim.ID)
		return nil, err
	}

	// Identity, chat thread and creation time survive edits
	claim.SubmittedBy = original.SubmittedBy
	claim.ChatHistory = original.ChatHistory
	claim.CreatedAt = original.CreatedAt
	claim.UpdatedAt = time.Now()

	approval.ResetApprovals(claim)

	if claim.Category == entity.CategoryFood {
		claim.Amount = entity.FoodAmount(claim.MealTypes)
	}

	if err := s.claimRepo.Update(ctx, claim); err != nil {
		s.logger.Error("Failed to update claim", "error", err, "claim_id", claim.ID)
		return nil, err
	}

	s.logger.Info("Claim edited", "claim_id", claim.ID, "status", claim.Status)
	return claim, nil
}

// RecordApproverDecision applies one approver's verdict, persists the
// updated claim, and notifies the submitter when the verdict changed.
func (s *claimServiceImpl) RecordApproverDecision(ctx context.Context, claimID, approverID, approverName string, decision entity.ClaimStatus) (*entity.Claim, error) {
	unlock := s.lock(claimID)
	defer unlock()

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		s.logger.Error("Claim not found for decision", "error", err, "claim_id", claimID)
		return nil, err
	}

	result, err := approval.ApplyDecision(claim, approverID, approverName, decision, time.Now())
	if err != nil {
		s.logger.Error("Failed to apply decision", "error", err, "claim_id", claimID, "approver_id", approverID)
		return nil, err
	}
	claim.UpdatedAt = time.Now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Update(txCtx, claim); err != nil {
			return fmt.Errorf("update claim: %w", err)
		}
		if result.Changed {
			if err := s.notifications.NotifyDecision(txCtx, claim, approverName, decision); err != nil {
				return fmt.Errorf("notify decision: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record decision", "error", err, "claim_id", claimID)
		return nil, err
	}

	s.logger.Info("Approver decision recorded",
		"claim_id", claimID,
		"approver_id", approverID,
		"decision", decision,
		"changed", result.Changed,
		"overall_status", claim.Status,
	)
	return claim, nil
}

// AddChatMessage appends a user message to the claim's thread and
// notifies the other party.
func (s *claimServiceImpl) AddChatMessage(ctx context.Context, claimID string, sender entity.Identity, content string) (*entity.Claim, error) {
	unlock := s.lock(claimID)
	defer unlock()

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		s.logger.Error("Claim not found for chat message", "error", err, "claim_id", claimID)
		return nil, err
	}

	message := entity.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Timestamp:  time.Now(),
		Content:    content,
		Type:       entity.MessageTypeUser,
	}
	claim.ChatHistory = append(claim.ChatHistory, message)
	claim.UpdatedAt = message.Timestamp

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Update(txCtx, claim); err != nil {
			return fmt.Errorf("update claim: %w", err)
		}
		if err := s.notifications.NotifyChatMessage(txCtx, claim, message); err != nil {
			return fmt.Errorf("notify chat message: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to add chat message", "error", err, "claim_id", claimID)
		return nil, err
	}

	s.logger.Info("Chat message added", "claim_id", claimID, "sender_id", sender.ID)
	return claim, nil
}

// GetClaim retrieves a single claim
func (s *claimServiceImpl) GetClaim(ctx context.Context, claimID string) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		s.logger.Error("Failed to get claim", "error", err, "claim_id", claimID)
		return nil, err
	}
	return claim, nil
}

// ListClaimsForUser returns claims the user submitted or approves
func (s *claimServiceImpl) ListClaimsForUser(ctx context.Context, userID string) ([]*entity.Claim, error) {
	claims, err := s.claimRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list claims", "error", err, "user_id", userID)
		return nil, err
	}
	return claims, nil
}

// MarkViewed clears the submitter's status-change flag when they open
// the claim. Viewers other than the submitter leave the flag alone.
func (s *claimServiceImpl) MarkViewed(ctx context.Context, claimID, viewerID string) (*entity.Claim, error) {
	unlock := s.lock(claimID)
	defer unlock()

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsSubmitter(viewerID) || !claim.HasStatusChanged {
		return claim, nil
	}

	claim.HasStatusChanged = false
	if err := s.claimRepo.Update(ctx, claim); err != nil {
		s.logger.Error("Failed to clear status flag", "error", err, "claim_id", claimID)
		return nil, err
	}
	return claim, nil
}

// lock acquires the mutex for one claim id and returns its release func
func (s *claimServiceImpl) lock(claimID string) func() {
	v, _ := s.locks.LoadOrStore(claimID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
