package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/claimdesk/claimdesk/internal/domain/entity"
)

func TestExport(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	claims := []*entity.Claim{
		{
			ID:          "c1",
			Category:    entity.CategoryCab,
			Amount:      450.50,
			Date:        "2025-03-10",
			Description: "Airport drop",
			Status:      entity.StatusApproved,
			SubmittedBy: entity.Identity{ID: "emp1", Name: "Jane Smith"},
			Approvers: []entity.Approver{
				{ID: "mgr1", Name: "John Doe", Status: entity.StatusApproved},
			},
			CreatedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:          "c2",
			Category:    entity.CategoryFood,
			Amount:      200,
			Date:        "2025-03-11",
			Status:      entity.StatusPending,
			SubmittedBy: entity.Identity{ID: "emp1", Name: "Jane Smith"},
			CreatedAt:   time.Date(2025, 3, 11, 13, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf, claims))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Claims")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Claim ID", rows[0][0])
	assert.Equal(t, "c1", rows[1][0])
	assert.Equal(t, "Airport drop", rows[1][2])
	assert.Equal(t, "John Doe (Approved)", rows[1][7])

	// Food claim without a description falls back to its category
	assert.Equal(t, "Food", rows[2][2])
	assert.Equal(t, "Pending", rows[2][5])
}

func TestExport_NoClaims(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Claims")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Status", rows[0][5])
}
