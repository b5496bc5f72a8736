// Package approval implements the claim status aggregation engine: the
// rules by which a claim's overall status and chat audit trail evolve
// as individual approvers act.
package approval

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

// SystemSenderID identifies engine-generated chat messages
const SystemSenderID = "system"

// OverallStatus reduces a claim's approver set to its overall status.
// Rejection dominates: any Rejected approver rejects the claim; any
// remaining Pending approver keeps it Pending; otherwise all have
// approved. An empty approver set reduces to Pending.
func OverallStatus(approvers []entity.Approver) entity.ClaimStatus {
	hasPending := false
	for _, a := range approvers {
		switch a.Status {
		case entity.StatusRejected:
			return entity.StatusRejected
		case entity.StatusPending:
			hasPending = true
		}
	}
	if hasPending || len(approvers) == 0 {
		return entity.StatusPending
	}
	return entity.StatusApproved
}

// Decision is the result of applying one approver's verdict to a claim
type Decision struct {
	// Changed is true when the approver's status actually moved; a
	// repeated identical decision still resets bookkeeping flags but
	// reports Changed=false and emits no chat entry.
	Changed bool

	// PreviousOverall is the claim's overall status before the decision
	PreviousOverall entity.ClaimStatus
}

// ApplyDecision records one approver's verdict on the claim in place.
//
// The matching approver gets the new status and a StatusChanged flag;
// every other approver's StatusChanged flag is cleared so only the most
// recent actor is highlighted. The overall status is recomputed from
// the full approver set, a system chat entry is appended when the
// verdict actually changed, and HasStatusChanged is raised when either
// an approver flag is set or the overall status moved.
func ApplyDecision(claim *entity.Claim, approverID, approverName string, decision entity.ClaimStatus, now time.Time) (Decision, error) {
	if decision != entity.StatusApproved && decision != entity.StatusRejected {
		return Decision{}, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	if claim.ApproverByID(approverID) == nil {
		return Decision{}, fmt.Errorf("%w: %s", ErrApproverNotFound, approverID)
	}

	result := Decision{PreviousOverall: claim.Status}

	for i := range claim.Approvers {
		a := &claim.Approvers[i]
		if a.ID == approverID {
			result.Changed = a.Status != decision
			a.Status = decision
			a.StatusChanged = result.Changed
		} else {
			a.StatusChanged = false
		}
	}

	claim.Status = OverallStatus(claim.Approvers)

	if result.Changed {
		claim.ChatHistory = append(claim.ChatHistory, entity.ChatMessage{
			ID:         uuid.NewString(),
			SenderID:   SystemSenderID,
			SenderName: "System",
			Timestamp:  now,
			Content:    fmt.Sprintf("%s changed their status to %s.", approverName, decision),
			Type:       entity.MessageTypeSystem,
		})
	}

	anyFlagged := false
	for _, a := range claim.Approvers {
		if a.StatusChanged {
			anyFlagged = true
			break
		}
	}
	claim.HasStatusChanged = anyFlagged || claim.Status != result.PreviousOverall

	return result, nil
}

// ResetApprovals re-opens the approval cycle: every approver returns to
// Pending with flags cleared and the overall status is recomputed.
// Used when a claim is edited.
func ResetApprovals(claim *entity.Claim) {
	for i := range claim.Approvers {
		claim.Approvers[i].Status = entity.StatusPending
		claim.Approvers[i].StatusChanged = false
	}
	claim.Status = OverallStatus(claim.Approvers)
	claim.HasStatusChanged = false
}
