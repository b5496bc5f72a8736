package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

func TestMarkRead_Idempotent(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := NewNotificationService(repo, &mockLogger{})
	ctx := context.Background()

	claim := &entity.Claim{
		ID:          "claim-1",
		Category:    entity.CategoryTrain,
		Amount:      950,
		SubmittedBy: jane,
		Approvers:   []entity.Approver{{ID: john.ID, Name: john.Name}},
	}
	require.NoError(t, svc.NotifyClaimSubmitted(ctx, claim))

	list, err := svc.ListForUser(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].IsRead)

	read, err := svc.MarkRead(ctx, list[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	// Marking again is a no-op with the same observable result
	again, err := svc.MarkRead(ctx, list[0].ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)
}

func TestMarkAllRead(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := NewNotificationService(repo, &mockLogger{})
	ctx := context.Background()

	for _, claimID := range []string{"c1", "c2", "c3"} {
		claim := &entity.Claim{
			ID:          claimID,
			Category:    entity.CategoryLaundry,
			Amount:      600,
			SubmittedBy: ravi,
			Approvers:   []entity.Approver{{ID: jane.ID, Name: jane.Name}},
		}
		require.NoError(t, svc.NotifyClaimSubmitted(ctx, claim))
	}

	count, err := svc.CountUnread(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	updated, err := svc.MarkAllRead(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, updated, 3)
	for _, n := range updated {
		assert.True(t, n.IsRead)
	}

	count, err = svc.CountUnread(ctx, jane.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotifyChatMessage_SubmitterSkipsSelf(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := NewNotificationService(repo, &mockLogger{})
	ctx := context.Background()

	claim := &entity.Claim{
		ID:          "claim-1",
		Category:    entity.CategoryStay,
		Amount:      12500,
		Description: "Hotel stay for client visit",
		SubmittedBy: jane,
		Approvers: []entity.Approver{
			{ID: john.ID, Name: john.Name},
			{ID: ravi.ID, Name: ravi.Name},
		},
	}

	err := svc.NotifyChatMessage(ctx, claim, entity.ChatMessage{
		SenderID:   jane.ID,
		SenderName: jane.Name,
		Content:    "Booking confirmation attached.",
		Type:       entity.MessageTypeUser,
	})
	require.NoError(t, err)

	assert.Len(t, repo.notifications, 2)
	for _, n := range repo.notifications {
		assert.NotEqual(t, jane.ID, n.UserID)
		assert.Equal(t, "Jane Smith sent a message on a Stay claim.", n.Message)
		assert.Equal(t, "Hotel stay for client visit", n.ClaimDescription)
	}
}

func TestScanReceipt_DegradesOnFailure(t *testing.T) {
	svc := NewReceiptService(&mockExtractor{
		extractFunc: func(ctx context.Context, content []byte, mimeType string) (*entity.ReceiptData, error) {
			return nil, assert.AnError
		},
	}, &mockLogger{})

	data := svc.ScanReceipt(context.Background(), []byte("not-an-image"), "image/jpeg")
	assert.Nil(t, data)
}

func TestScanReceipt_DropsUnknownCategory(t *testing.T) {
	svc := NewReceiptService(&mockExtractor{
		extractFunc: func(ctx context.Context, content []byte, mimeType string) (*entity.ReceiptData, error) {
			return &entity.ReceiptData{Amount: 450, Date: "2024-03-01", Category: "Groceries"}, nil
		},
	}, &mockLogger{})

	data := svc.ScanReceipt(context.Background(), []byte("img"), "image/png")
	require.NotNil(t, data)
	assert.Equal(t, 450.0, data.Amount)
	assert.Empty(t, data.Category)
}
