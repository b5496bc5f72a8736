package approval

import "errors"

var (
	// ErrApproverNotFound means the acting approver is not listed on the claim
	ErrApproverNotFound = errors.New("approver not listed on claim")

	// ErrInvalidDecision means the decision is neither Approved nor Rejected
	ErrInvalidDecision = errors.New("decision must be Approved or Rejected")
)
