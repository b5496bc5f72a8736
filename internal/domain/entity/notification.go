package entity

import "time"

// Notification is a per-user record of a claim event. Created unread by
// the fan-out component, mutated only to flip IsRead, never deleted.
type Notification struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	ClaimID string `json:"claim_id"`
	Message string `json:"message"`
	IsRead  bool   `json:"is_read"`

	// ClaimDescription is a denormalized snapshot of the claim's
	// description (or category name) taken at creation time.
	ClaimDescription string    `json:"claim_description"`
	Timestamp        time.Time `json:"timestamp"`
}
