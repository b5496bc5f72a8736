package port

import "context"

// FileStore persists uploaded receipt files and maps them to the URLs
// recorded on claims as proof references.
type FileStore interface {
	// SaveReceipt stores a receipt file under the claim scope and
	// returns the URL path it will be served from
	SaveReceipt(ctx context.Context, claimID, fileName string, content []byte) (string, error)
}
