package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/xuri/excelize/v2"
)

// exportLimit caps the rows of a single export
const exportLimit = 10000

var ledgerExportHeaders = []string{
	"ID", "Type", "Branche", "Numéro", "Prime (DT)", "Assuré",
	"Mode Paiement", "Type Paiement", "Créé par", "Date création",
}

// ExportService builds spreadsheet exports of the ledger
type ExportService struct {
	ledgerRepo repository.LedgerRepository
	loc        *time.Location
}

// NewExportService creates a new export service
func NewExportService(ledgerRepo repository.LedgerRepository, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{ledgerRepo: ledgerRepo, loc: loc}
}

// LedgerXLSX exports the ledger rows matching query's filters, ignoring its pagination
func (s *ExportService) LedgerXLSX(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	q := *query
	q.Page = 1
	q.PerPage = exportLimit

	entries, _, err := s.ledgerRepo.List(ctx, &q)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load ledger: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Contrats"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	for i, h := range ledgerExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A1", "J1", headerStyle)

	for i, e := range entries {
		row := i + 2
		amount, _ := e.Amount.Float64()
		values := []interface{}{
			e.ID,
			models.CategoryLabel(e.Category),
			e.Branch,
			e.ContractNumber,
			amount,
			e.InsuredName,
			models.PaymentMethodLabel(e.PaymentMethod),
			models.PaymentPlanLabel(e.PaymentPlan),
			e.CreatedBy,
			e.CreatedAt.In(s.loc).Format("02/01/2006 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, "", err
		}
		amountCell, _ := excelize.CoordinatesToCellName(5, row)
		_ = f.SetCellStyle(sheet, amountCell, amountCell, amountStyle)
	}

	_ = f.SetColWidth(sheet, "B", "B", 22)
	_ = f.SetColWidth(sheet, "D", "D", 16)
	_ = f.SetColWidth(sheet, "F", "F", 30)
	_ = f.SetColWidth(sheet, "G", "H", 16)
	_ = f.SetColWidth(sheet, "J", "J", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("contrats_%s.xlsx", time.Now().In(s.loc).Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
