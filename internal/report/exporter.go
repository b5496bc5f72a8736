package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

const sheetName = "Claims"

var headers = []string{
	"Claim ID", "Category", "Description", "Amount (INR)", "Date",
	"Status", "Submitted By", "Approvers", "Submitted At",
}

// Exporter writes claim listings as Excel workbooks
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new claims exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Export writes the given claims to w as an xlsx workbook
func (e *Exporter) Export(w io.Writer, claims []*entity.Claim) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve header cell: %w", err)
		}
		e.setCell(f, cell, header)
	}

	for i, claim := range claims {
		row := i + 2
		values := []interface{}{
			claim.ID,
			string(claim.Category),
			claim.DisplayDescription(),
			claim.Amount,
			claim.Date,
			string(claim.Status),
			claim.SubmittedBy.Name,
			approverSummary(claim.Approvers),
			claim.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to resolve cell: %w", err)
			}
			e.setCell(f, cell, value)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Claims exported", zap.Int("claim_count", len(claims)))
	return nil
}

func (e *Exporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// approverSummary renders approvers as "Name (Status)" pairs
func approverSummary(approvers []entity.Approver) string {
	parts := make([]string, 0, len(approvers))
	for _, a := range approvers {
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Name, a.Status))
	}
	return strings.Join(parts, ", ")
}
