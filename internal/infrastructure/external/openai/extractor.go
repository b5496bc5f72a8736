package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

// maxReceiptPages caps how many PDF pages are sent to the Vision API
const maxReceiptPages = 2

// ReceiptExtractor extracts expense data from receipt images and PDFs
// using the Vision API.
type ReceiptExtractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewReceiptExtractor creates a new receipt extractor
func NewReceiptExtractor(apiKey, model string, logger *zap.Logger) *ReceiptExtractor {
	client := openai.NewClient(apiKey)
	return &ReceiptExtractor{
		client: client,
		model:  model,
		logger: logger,
	}
}

var _ port.ReceiptExtractor = (*ReceiptExtractor)(nil)

// Extract reads a receipt and returns the amount, date and category it
// shows. PDFs are rasterized page by page; images go through as-is.
func (e *ReceiptExtractor) Extract(ctx context.Context, content []byte, mimeType string) (*entity.ReceiptData, error) {
	images, err := e.prepareImages(content, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare receipt: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no readable pages in receipt")
	}

	return e.extractWithVision(ctx, images)
}

// prepareImages normalizes the upload into JPEG pages for the Vision API
func (e *ReceiptExtractor) prepareImages(content []byte, mimeType string) ([][]byte, error) {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp":
		return [][]byte{content}, nil
	case "application/pdf":
		return e.rasterizePDF(content)
	default:
		return nil, fmt.Errorf("unsupported receipt type: %s", mimeType)
	}
}

// rasterizePDF converts the first pages of a PDF to JPEG via mupdf
func (e *ReceiptExtractor) rasterizePDF(content []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount > maxReceiptPages {
		pageCount = maxReceiptPages
	}

	var images [][]byte
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			e.logger.Warn("Failed to rasterize PDF page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			e.logger.Warn("Failed to encode PDF page to JPEG",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		images = append(images, buf.Bytes())
	}

	return images, nil
}

// extractWithVision sends the receipt pages to the Vision API and parses
// the structured result.
func (e *ReceiptExtractor) extractWithVision(ctx context.Context, images [][]byte) (*entity.ReceiptData, error) {
	contentParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: receiptPrompt,
		},
	}

	for _, imgData := range images {
		base64Img := base64.StdEncoding.EncodeToString(imgData)
		contentParts = append(contentParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64Img),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   512,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert at reading expense receipts. Extract the total amount, date and expense category exactly as shown. Always respond with valid JSON.",
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("Vision API call failed", zap.Error(err))
		return nil, fmt.Errorf("Vision API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from Vision API")
	}

	content := resp.Choices[0].Message.Content

	var data entity.ReceiptData
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		e.logger.Error("Failed to parse Vision API response",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	e.logger.Info("Receipt data extracted",
		zap.Float64("amount", data.Amount),
		zap.String("date", data.Date),
		zap.String("category", string(data.Category)))

	return &data, nil
}

const receiptPrompt = `Examine this receipt and extract the expense details.

Return a JSON object with this exact structure:
{
  "amount": number,
  "date": "YYYY-MM-DD",
  "category": "string"
}

Rules:
- "amount" is the final total paid, as a number without currency symbols.
- "date" is the transaction date in YYYY-MM-DD format.
- "category" must be one of: Food, Cab, Train, Laundry, Stay. Pick the
  closest match for what the receipt shows. Use "" if unclear.
- Extract EXACTLY what you see. If a field is not visible, use 0 or "".`
