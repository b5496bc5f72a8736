package port

import (
	"context"

	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

// ReceiptExtractor extracts structured autofill data from a receipt
// file. The result is best-effort: callers treat failures as "no
// autofill available" and never block submission on it.
type ReceiptExtractor interface {
	Extract(ctx context.Context, content []byte, mimeType string) (*entity.ReceiptData, error)
}
