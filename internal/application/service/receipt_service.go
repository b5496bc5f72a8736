package service

import (
	"context"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

// ReceiptService runs best-effort receipt extraction for form autofill.
// Extraction is never authoritative and never blocks submission: any
// extractor failure degrades to manual entry.
type ReceiptService interface {
	// ScanReceipt returns autofill data, or nil when nothing usable
	// could be extracted. It never returns an error to the caller.
	ScanReceipt(ctx context.Context, content []byte, mimeType string) *entity.ReceiptData
}

type receiptServiceImpl struct {
	extractor port.ReceiptExtractor
	logger    Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(extractor port.ReceiptExtractor, logger Logger) ReceiptService {
	return &receiptServiceImpl{
		extractor: extractor,
		logger:    logger,
	}
}

func (s *receiptServiceImpl) ScanReceipt(ctx context.Context, content []byte, mimeType string) *entity.ReceiptData {
	data, err := s.extractor.Extract(ctx, content, mimeType)
	if err != nil {
		s.logger.Error("Receipt extraction failed, falling back to manual entry",
			"error", err,
			"mime_type", mimeType,
			"size_bytes", len(content),
		)
		return nil
	}

	if data != nil && !data.Category.Valid() {
		data.Category = ""
	}

	s.logger.Info("Receipt scanned", "mime_type", mimeType)
	return data
}
