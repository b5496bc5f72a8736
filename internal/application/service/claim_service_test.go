package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

func newTestStack() (ClaimService, NotificationService, *memClaimRepo, *memNotificationRepo) {
	claimRepo := newMemClaimRepo()
	notificationRepo := newMemNotificationRepo()
	logger := &mockLogger{}
	notifications := NewNotificationService(notificationRepo, logger)
	claims := NewClaimService(claimRepo, notifications, &mockTxManager{}, logger)
	return claims, notifications, claimRepo, notificationRepo
}

var (
	jane = entity.Identity{ID: "emp1", Name: "Jane Smith"}
	john = entity.Identity{ID: "mgr1", Name: "John Doe"}
	ravi = entity.Identity{ID: "mgr2", Name: "Ravi Kumar"}
)

func submitCabClaim(t *testing.T, claims ClaimService, approvers ...entity.Identity) *entity.Claim {
	t.Helper()

	var listed []entity.Approver
	for _, a := range approvers {
		listed = append(listed, entity.Approver{ID: a.ID, Name: a.Name})
	}

	claim, err := claims.SubmitClaim(context.Background(), &entity.Claim{
		Category:     entity.CategoryCab,
		Amount:       1200,
		Date:         "2024-03-01",
		Description:  "Airport transfer",
		ProofURLs:    []string{"/uploads/receipt.jpg"},
		Approvers:    listed,
		FromLocation: "Office",
		ToLocation:   "Airport",
		CabType:      entity.CabCab,
		BookingApp:   entity.BookingUber,
	}, jane)
	require.NoError(t, err)
	return claim
}

func TestSubmitClaim(t *testing.T) {
	claims, _, _, notificationRepo := newTestStack()

	claim := submitCabClaim(t, claims, john, ravi)

	assert.NotEmpty(t, claim.ID)
	assert.Equal(t, entity.StatusPending, claim.Status)
	assert.Equal(t, jane, claim.SubmittedBy)
	assert.Empty(t, claim.ChatHistory)
	assert.False(t, claim.HasStatusChanged)
	for _, a := range claim.Approvers {
		assert.Equal(t, entity.StatusPending, a.Status)
	}

	// One unread notification per approver, none for the submitter
	for _, approver := range []entity.Identity{john, ravi} {
		list, err := notificationRepo.ListByUser(context.Background(), approver.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.False(t, list[0].IsRead)
		assert.Equal(t, claim.ID, list[0].ClaimID)
		assert.Equal(t, "Jane Smith submitted a Cab claim for ₹1200.00 for your approval.", list[0].Message)
		assert.Equal(t, "Airport transfer", list[0].ClaimDescription)
	}
	list, err := notificationRepo.ListByUser(context.Background(), jane.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmitClaim_FoodAmountDerived(t *testing.T) {
	claims, _, _, _ := newTestStack()

	claim, err := claims.SubmitClaim(context.Background(), &entity.Claim{
		Category:  entity.CategoryFood,
		Amount:    9999, // caller-supplied amount is ignored for Food
		Date:      "2024-03-01",
		MealTypes: []entity.MealType{entity.MealLunch, entity.MealDinner},
		Approvers: []entity.Approver{{ID: john.ID, Name: john.Name}},
	}, jane)
	require.NoError(t, err)

	assert.Equal(t, 200.0, claim.Amount)
}

func TestEditClaim_ResetsApprovalCycle(t *testing.T) {
	claims, _, _, notificationRepo := newTestStack()

	claim := submitCabClaim(t, claims, john, ravi)

	_, err := claims.RecordApproverDecision(context.Background(), claim.ID, john.ID, john.Name, entity.StatusRejected)
	require.NoError(t, err)

	before := len(notificationRepo.notifications)

	claim.Description = "Airport transfer, corrected fare"
	claim.Amount = 1350
	edited, err := claims.EditClaim(context.Background(), claim)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, edited.Status)
	for _, a := range edited.Approvers {
		assert.Equal(t, entity.StatusPending, a.Status)
		assert.False(t, a.StatusChanged)
	}
	assert.False(t, edited.HasStatusChanged)
	assert.Equal(t, jane, edited.SubmittedBy)

	// Edits notify nobody
	assert.Len(t, notificationRepo.notifications, before)
}

func TestEditClaim_NotFound(t *testing.T) {
	claims, _, _, _ := newTestStack()

	_, err := claims.EditClaim(context.Background(), &entity.Claim{ID: "missing"})
	assert.ErrorIs(t, err, port.ErrClaimNotFound)
}

func TestRecordApproverDecision(t *testing.T) {
	claims, _, _, notificationRepo := newTestStack()

	claim := submitCabClaim(t, claims, john)

	updated, err := claims.RecordApproverDecision(context.Background(), claim.ID, john.ID, john.Name, entity.StatusApproved)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, updated.Status)
	assert.True(t, updated.HasStatusChanged)
	require.Len(t, updated.ChatHistory, 1)
	assert.Equal(t, entity.MessageTypeSystem, updated.ChatHistory[0].Type)

	list, err := notificationRepo.ListByUser(context.Background(), jane.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "John Doe has approved your Cab claim for ₹1200.00.", list[0].Message)
}

func TestRecordApproverDecision_IdempotentRepeat(t *testing.T) {
	claims, _, _, notificationRepo := newTestStack()

	claim := submitCabClaim(t, claims, john)

	first, err := claims.RecordApproverDecision(context.Background(), claim.ID, john.ID, john.Name, entity.StatusApproved)
	require.NoError(t, err)

	second, err := claims.RecordApproverDecision(context.Background(), claim.ID, john.ID, john.Name, entity.StatusApproved)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Len(t, second.ChatHistory, 1, "no extra system message on repeat")

	list, err := notificationRepo.ListByUser(context.Background(), jane.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "no extra notification on repeat")
}

func TestRecordApproverDecision_NotFound(t *testing.T) {
	claims, _, _, _ := newTestStack()

	_, err := claims.RecordApproverDecision(context.Background(), "missing", john.ID, john.Name, entity.StatusApproved)
	assert.ErrorIs(t, err, port.ErrClaimNotFound)
}

func TestRecordApproverDecision_FailedUpdateWritesNothing(t *testing.T) {
	claimRepo := newMemClaimRepo()
	notificationRepo := newMemNotificationRepo()
	logger := &mockLogger{}
	notifications := NewNotificationService(notificationRepo, logger)
	claims := NewClaimService(claimRepo, notifications, &mockTxManager{}, logger)

	claim := submitCabClaim(t, claims, john)

	claimRepo.updateFunc = func(ctx context.Context, c *entity.Claim) error {
		return assert.AnError
	}

	_, err := claims.RecordApproverDecision(context.Background(), claim.ID, john.ID, john.Name, entity.StatusApproved)
	require.Error(t, err)

	list, err := notificationRepo.ListByUser(context.Background(), jane.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "failed mutation must not leave an orphaned notification")
}

func TestAddChatMessage_FromSubmitter(t *testing.T) {
	claims, _, _, notificationRepo := newTestStack()

	claim := submitCabClaim(t, claims, john, ravi)
	before := len(notificationRepo.notifications)

	updated, err := claims.AddChatMessage(context.Background(), claim.ID, jane, "Receipt attached, please review.")
	require.NoError(t, err)

	require.Len(t, updated.ChatHistory, 1)
	assert.Equal(t, entity.MessageTypeUser, updated.ChatHistory[0].Type)
	assert.Equal(t, jane.ID, updated.ChatHistory[0].SenderID)

	// Both approvers notified, submitter not
	assert.Len(t, notificationRepo.notifications, before+2)
	list, _ := notificationRepo.ListByUser(context.Background(), john.ID)
	require.Len(t, list, 2) // submission + chat
	var messages []string
	for _, n := range list {
		messages = append(messages, n.Message)
	}
	assert.Contains(t, messages, "Jane Smith sent a message on a Cab claim.")
}

func TestAddChatMessage_FromApprover(t *testing.T) {
	claims, _, _, notificationRepo := newTestStack()

	claim := submitCabClaim(t, claims, john, ravi)
	before := len(notificationRepo.notifications)

	_, err := claims.AddChatMessage(context.Background(), claim.ID, john, "Missing the invoice number.")
	require.NoError(t, err)

	// Only the submitter is notified
	assert.Len(t, notificationRepo.notifications, before+1)
	list, _ := notificationRepo.ListByUser(context.Background(), jane.ID)
	require.Len(t, list, 1)
	assert.Equal(t, "John Doe sent a message on your Cab claim.", list[0].Message)
}

func TestMarkViewed(t *testing.T) {
	claims, _, _, _ := newTestStack()

	claim := submitCabClaim(t, claims, john)
	_, err := claims.RecordApproverDecision(context.Background(), claim.ID, john.ID, john.Name, entity.StatusApproved)
	require.NoError(t, err)

	// Non-submitter view leaves the flag alone
	viewed, err := claims.MarkViewed(context.Background(), claim.ID, john.ID)
	require.NoError(t, err)
	assert.True(t, viewed.HasStatusChanged)

	// Submitter view clears it
	viewed, err = claims.MarkViewed(context.Background(), claim.ID, jane.ID)
	require.NoError(t, err)
	assert.False(t, viewed.HasStatusChanged)
}

func TestListClaimsForUser(t *testing.T) {
	claims, _, _, _ := newTestStack()

	mine := submitCabClaim(t, claims, john)

	// A claim Jane approves rather than owns
	other, err := claims.SubmitClaim(context.Background(), &entity.Claim{
		Category:  entity.CategoryStay,
		Amount:    8000,
		Date:      "2024-03-02",
		Approvers: []entity.Approver{{ID: jane.ID, Name: jane.Name}},
	}, ravi)
	require.NoError(t, err)

	list, err := claims.ListClaimsForUser(context.Background(), jane.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	ids := []string{list[0].ID, list[1].ID}
	assert.Contains(t, ids, mine.ID)
	assert.Contains(t, ids, other.ID)

	// John only sees the claim he approves
	list, err = claims.ListClaimsForUser(context.Background(), john.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}

// Submit a Food claim with one approver who rejects it, exercising the
// full submit -> reject -> notify chain.
func TestFoodClaimRejectionEndToEnd(t *testing.T) {
	claims, notifications, _, _ := newTestStack()
	ctx := context.Background()

	claim, err := claims.SubmitClaim(ctx, &entity.Claim{
		Category:  entity.CategoryFood,
		Date:      "2024-03-01",
		MealTypes: []entity.MealType{entity.MealLunch, entity.MealDinner},
		Approvers: []entity.Approver{{ID: john.ID, Name: john.Name}},
	}, jane)
	require.NoError(t, err)
	assert.Equal(t, 200.0, claim.Amount)

	updated, err := claims.RecordApproverDecision(ctx, claim.ID, john.ID, john.Name, entity.StatusRejected)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, updated.Status)
	require.Len(t, updated.ChatHistory, 1)
	assert.Equal(t, "John Doe changed their status to Rejected.", updated.ChatHistory[0].Content)

	list, err := notifications.ListForUser(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "John Doe has rejected your Food claim for ₹200.00.", list[0].Message)
	assert.Equal(t, "Food", list[0].ClaimDescription, "empty description falls back to category")
	assert.False(t, list[0].IsRead)
}
