package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
	"github.com/claimdesk/claimdesk/internal/infrastructure/persistence/sqlite"
)

// ClaimRepository implements port.ClaimRepository on SQLite.
//
// A claim is a document-shaped aggregate with a single writer per id,
// so approvers, chat history, proof URLs and meal types are stored as
// JSON columns; the columns queried by filters (submitter, status)
// stay relational.
type ClaimRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sqlite.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			id, category, amount, date, description, invoice_number,
			proof_urls, status, submitted_by_id, submitted_by_name,
			approvers, chat_history, has_status_changed,
			meal_types, from_location, to_location,
			cab_type, booking_app, co_passengers,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	approvers, chatHistory, proofURLs, mealTypes, err := marshalClaimColumns(claim)
	if err != nil {
		return err
	}

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		claim.ID,
		claim.Category,
		claim.Amount,
		claim.Date,
		claim.Description,
		claim.InvoiceNumber,
		proofURLs,
		claim.Status,
		claim.SubmittedBy.ID,
		claim.SubmittedBy.Name,
		approvers,
		chatHistory,
		claim.HasStatusChanged,
		mealTypes,
		claim.FromLocation,
		claim.ToLocation,
		claim.CabType,
		claim.BookingApp,
		claim.CoPassengers,
		claim.CreatedAt,
		claim.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.String("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

// GetByID retrieves a claim by id
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	query := selectClaimColumns + ` WHERE id = ?`

	row := r.db.Executor(ctx).QueryRowContext(ctx, query, id)
	claim, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, port.ErrClaimNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get claim", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return claim, nil
}

// Update replaces the stored claim
func (r *ClaimRepository) Update(ctx context.Context, claim *entity.Claim) error {
	query := `
		UPDATE claims SET
			category = ?, amount = ?, date = ?, description = ?,
			invoice_number = ?, proof_urls = ?, status = ?,
			approvers = ?, chat_history = ?, has_status_changed = ?,
			meal_types = ?, from_location = ?, to_location = ?,
			cab_type = ?, booking_app = ?, co_passengers = ?,
			updated_at = ?
		WHERE id = ?
	`

	approvers, chatHistory, proofURLs, mealTypes, err := marshalClaimColumns(claim)
	if err != nil {
		return err
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		claim.Category,
		claim.Amount,
		claim.Date,
		claim.Description,
		claim.InvoiceNumber,
		proofURLs,
		claim.Status,
		approvers,
		chatHistory,
		claim.HasStatusChanged,
		mealTypes,
		claim.FromLocation,
		claim.ToLocation,
		claim.CabType,
		claim.BookingApp,
		claim.CoPassengers,
		claim.UpdatedAt,
		claim.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update claim", zap.String("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to update claim: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return port.ErrClaimNotFound
	}

	return nil
}

// ListForUser returns claims the user submitted or approves, newest first.
// Approver membership is checked against the JSON approver column.
func (r *ClaimRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Claim, error) {
	query := selectClaimColumns + `
		WHERE submitted_by_id = ?
		   OR EXISTS (
				SELECT 1 FROM json_each(claims.approvers)
				WHERE json_extract(json_each.value, '$.id') = ?
		   )
		ORDER BY created_at DESC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID, userID)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*entity.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

const selectClaimColumns = `
	SELECT id, category, amount, date, description, invoice_number,
		proof_urls, status, submitted_by_id, submitted_by_name,
		approvers, chat_history, has_status_changed,
		meal_types, from_location, to_location,
		cab_type, booking_app, co_passengers,
		created_at, updated_at
	FROM claims`

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*entity.Claim, error) {
	var claim entity.Claim
	var proofURLs, approvers, chatHistory, mealTypes string
	var invoiceNumber, fromLocation, toLocation, cabType, bookingApp, coPassengers sql.NullString

	err := row.Scan(
		&claim.ID,
		&claim.Category,
		&claim.Amount,
		&claim.Date,
		&claim.Description,
		&invoiceNumber,
		&proofURLs,
		&claim.Status,
		&claim.SubmittedBy.ID,
		&claim.SubmittedBy.Name,
		&approvers,
		&chatHistory,
		&claim.HasStatusChanged,
		&mealTypes,
		&fromLocation,
		&toLocation,
		&cabType,
		&bookingApp,
		&coPassengers,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	claim.InvoiceNumber = invoiceNumber.String
	claim.FromLocation = fromLocation.String
	claim.ToLocation = toLocation.String
	claim.CabType = entity.CabType(cabType.String)
	claim.BookingApp = entity.BookingApp(bookingApp.String)
	claim.CoPassengers = coPassengers.String

	if err := json.Unmarshal([]byte(proofURLs), &claim.ProofURLs); err != nil {
		return nil, fmt.Errorf("failed to decode proof urls: %w", err)
	}
	if err := json.Unmarshal([]byte(approvers), &claim.Approvers); err != nil {
		return nil, fmt.Errorf("failed to decode approvers: %w", err)
	}
	if err := json.Unmarshal([]byte(chatHistory), &claim.ChatHistory); err != nil {
		return nil, fmt.Errorf("failed to decode chat history: %w", err)
	}
	if err := json.Unmarshal([]byte(mealTypes), &claim.MealTypes); err != nil {
		return nil, fmt.Errorf("failed to decode meal types: %w", err)
	}

	return &claim, nil
}

func marshalClaimColumns(claim *entity.Claim) (approvers, chatHistory, proofURLs, mealTypes string, err error) {
	if claim.Approvers == nil {
		claim.Approvers = []entity.Approver{}
	}
	if claim.ChatHistory == nil {
		claim.ChatHistory = []entity.ChatMessage{}
	}
	if claim.ProofURLs == nil {
		claim.ProofURLs = []string{}
	}
	if claim.MealTypes == nil {
		claim.MealTypes = []entity.MealType{}
	}

	a, err := json.Marshal(claim.Approvers)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to encode approvers: %w", err)
	}
	c, err := json.Marshal(claim.ChatHistory)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to encode chat history: %w", err)
	}
	p, err := json.Marshal(claim.ProofURLs)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to encode proof urls: %w", err)
	}
	m, err := json.Marshal(claim.MealTypes)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to encode meal types: %w", err)
	}

	return string(a), string(c), string(p), string(m), nil
}
