package entity

import "time"

// ClaimCategory is the expense category of a claim
type ClaimCategory string

const (
	CategoryFood    ClaimCategory = "Food"
	CategoryCab     ClaimCategory = "Cab"
	CategoryTrain   ClaimCategory = "Train"
	CategoryLaundry ClaimCategory = "Laundry"
	CategoryStay    ClaimCategory = "Stay"
)

// Categories lists all valid claim categories
var Categories = []ClaimCategory{
	CategoryFood,
	CategoryCab,
	CategoryTrain,
	CategoryLaundry,
	CategoryStay,
}

// Valid reports whether c is a known category
func (c ClaimCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ClaimStatus is the lifecycle state of a claim or a single approver verdict
type ClaimStatus string

const (
	StatusPending  ClaimStatus = "Pending"
	StatusApproved ClaimStatus = "Approved"
	StatusRejected ClaimStatus = "Rejected"
)

// MealType identifies a meal covered by a Food claim
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
)

// MealAllowances holds the fixed per-meal allowance amounts.
// Food claim amounts are derived from these, never entered by hand.
var MealAllowances = map[MealType]float64{
	MealBreakfast: 75,
	MealLunch:     100,
	MealDinner:    100,
}

// FoodAmount derives the claim amount for the selected meal types
func FoodAmount(mealTypes []MealType) float64 {
	var total float64
	for _, mt := range mealTypes {
		total += MealAllowances[mt]
	}
	return total
}

// CabType identifies the vehicle used for a Cab claim
type CabType string

const (
	CabAuto CabType = "Auto-Rickshaw"
	CabCab  CabType = "Cab"
	CabBike CabType = "Bike"
)

// BookingApp identifies the app a cab was booked through
type BookingApp string

const (
	BookingUber   BookingApp = "Uber"
	BookingOla    BookingApp = "Ola"
	BookingRapido BookingApp = "Rapido"
	BookingOther  BookingApp = "Other"
)

// Identity is a user reference carried on claims and messages
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Approver is one approver's verdict on one claim.
// StatusChanged is true only immediately after this approver's own
// status last changed; it is reset for every other approver on update.
type Approver struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Status        ClaimStatus `json:"status"`
	StatusChanged bool        `json:"status_changed,omitempty"`
}

// MessageType distinguishes user-authored from engine-generated chat entries
type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeSystem MessageType = "system"
)

// ChatMessage is one entry in a claim's chat thread.
// The thread is append-only; insertion order is chronological order.
type ChatMessage struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	Timestamp  time.Time   `json:"timestamp"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
}

// Claim is a single expense request
type Claim struct {
	ID            string        `json:"id"`
	Category      ClaimCategory `json:"category"`
	Amount        float64       `json:"amount"`
	Date          string        `json:"date"`
	Description   string        `json:"description"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	ProofURLs     []string      `json:"proof_urls"`
	Status        ClaimStatus   `json:"status"`
	SubmittedBy   Identity      `json:"submitted_by"`
	Approvers     []Approver    `json:"approvers"`
	ChatHistory   []ChatMessage `json:"chat_history"`

	// HasStatusChanged means an approver decision changed since the
	// submitter last viewed this claim; cleared when they open it.
	HasStatusChanged bool `json:"has_status_changed,omitempty"`

	// Food specific
	MealTypes []MealType `json:"meal_types,omitempty"`

	// Cab/Train specific
	FromLocation string `json:"from_location,omitempty"`
	ToLocation   string `json:"to_location,omitempty"`

	// Cab specific
	CabType      CabType    `json:"cab_type,omitempty"`
	BookingApp   BookingApp `json:"booking_app,omitempty"`
	CoPassengers string     `json:"co_passengers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayDescription returns the claim description, falling back to the
// category name when the description is empty. Used for notification
// snapshots.
func (c *Claim) DisplayDescription() string {
	if c.Description != "" {
		return c.Description
	}
	return string(c.Category)
}

// ApproverByID returns the approver entry with the given id, or nil
func (c *Claim) ApproverByID(id string) *Approver {
	for i := range c.Approvers {
		if c.Approvers[i].ID == id {
			return &c.Approvers[i]
		}
	}
	return nil
}

// IsSubmitter reports whether the given user owns this claim
func (c *Claim) IsSubmitter(userID string) bool {
	return c.SubmittedBy.ID == userID
}

// ReceiptData is the best-effort autofill extracted from a receipt image
type ReceiptData struct {
	Amount   float64       `json:"amount"`
	Date     string        `json:"date"`
	Category ClaimCategory `json:"category"`
}
