package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/sjperalta/fintera-assurance/internal/storage"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
)

// SessionReportService builds the end-of-day cash sheet ("feuille de caisse") of an agent
type SessionReportService struct {
	ledgerRepo repository.LedgerRepository
	storage    *storage.LocalStorage
	emailSvc   *EmailService
	now        func() time.Time
}

// NewSessionReportService creates a new session report service
func NewSessionReportService(ledgerRepo repository.LedgerRepository, store *storage.LocalStorage, emailSvc *EmailService) *SessionReportService {
	return &SessionReportService{
		ledgerRepo: ledgerRepo,
		storage:    store,
		emailSvc:   emailSvc,
		now:        time.Now,
	}
}

// Build aggregates the ledger rows written by username on day
func (s *SessionReportService) Build(ctx context.Context, day time.Time, username string) (*models.SessionReport, error) {
	day = models.Day(day)
	entries, err := s.ledgerRepo.FindBySession(ctx, day, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load session entries: %w", err)
	}

	report := summarizeSession(entries)
	report.Day = day.Format(models.DateLayout)
	report.Username = username
	report.GeneratedAt = s.now().In(day.Location())
	return report, nil
}

// summarizeSession folds ledger rows into report totals.
// For contracts, the amount collected through a payment method is the premium minus the part sold on credit.
func summarizeSession(entries []models.LedgerEntry) *models.SessionReport {
	report := &models.SessionReport{
		TotalAmount:      decimal.Zero,
		TotalPremium:     decimal.Zero,
		TotalCredit:      decimal.Zero,
		NetPremium:       decimal.Zero,
		FinancialBalance: decimal.Zero,
		ByPaymentMethod:  make(map[string]models.MethodTotal),
		ByPaymentPlan:    make(map[string]int),
		ByCategory:       make(map[string]int),
		Entries:          entries,
	}
	if report.Entries == nil {
		report.Entries = []models.LedgerEntry{}
	}

	for i := range entries {
		e := &entries[i]
		report.ByCategory[e.Category]++
		report.TotalAmount = report.TotalAmount.Add(e.Amount)

		if !models.IsContractCategory(e.Category) {
			report.FinancialBalance = report.FinancialBalance.Add(e.Amount)
			continue
		}

		report.TotalContracts++
		report.TotalPremium = report.TotalPremium.Add(e.Premium)

		credit := decimal.Zero
		if e.CreditAmount != nil {
			credit = *e.CreditAmount
		}
		report.TotalCredit = report.TotalCredit.Add(credit)

		if e.PaymentPlan != "" {
			report.ByPaymentPlan[e.PaymentPlan]++
		}
		if e.PaymentMethod != "" {
			mt := report.ByPaymentMethod[e.PaymentMethod]
			mt.Count++
			mt.Amount = mt.Amount.Add(e.Premium.Sub(credit))
			report.ByPaymentMethod[e.PaymentMethod] = mt
		}
	}

	report.NetPremium = report.TotalPremium.Sub(report.TotalCredit)
	return report
}

// RenderPDF draws the report with a QR code carrying its totals
func (s *SessionReportService) RenderPDF(report *models.SessionReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Feuille de caisse "+report.Day), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, tr("Feuille de caisse"))
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(120, 6, tr(fmt.Sprintf("Agent : %s", report.Username)))
	pdf.Ln(5)
	pdf.Cell(120, 6, tr(fmt.Sprintf("Journée du %s", displayReportDay(report.Day))))
	pdf.Ln(5)
	pdf.Cell(120, 6, tr(fmt.Sprintf("Générée le %s", report.GeneratedAt.Format("02/01/2006 15:04"))))

	qrKey := barcode.RegisterQR(pdf, sessionQRPayload(report), qr.M, qr.Auto)
	barcode.Barcode(pdf, qrKey, 160, 10, 35, 35, false)
	pdf.SetY(50)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr("Totaux"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	totals := [][2]string{
		{"Contrats", fmt.Sprintf("%d", report.TotalContracts)},
		{"Primes encaissées (DT)", report.TotalPremium.StringFixed(3)},
		{"Crédits accordés (DT)", report.TotalCredit.StringFixed(3)},
		{"Prime nette (DT)", report.NetPremium.StringFixed(3)},
		{"Mouvements financiers (DT)", report.FinancialBalance.StringFixed(3)},
		{"Solde de caisse (DT)", report.TotalAmount.Sub(report.TotalCredit).StringFixed(3)},
	}
	for _, row := range totals {
		pdf.CellFormat(80, 6, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, row[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, tr("Arrêtée la présente feuille de caisse à la somme de : "+AmountToWords(report.TotalAmount.Sub(report.TotalCredit))), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr("Par mode de paiement"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, method := range sortedKeys(report.ByPaymentMethod) {
		mt := report.ByPaymentMethod[method]
		pdf.CellFormat(80, 6, tr(models.PaymentMethodLabel(method)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", mt.Count), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, mt.Amount.StringFixed(3), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	headers := []string{"Type", "Branche", "Numéro", "Assuré", "Mode", "Montant"}
	widths := []float64{30, 20, 30, 55, 30, 25}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, e := range report.Entries {
		cells := []string{
			models.CategoryLabel(e.Category),
			e.Branch,
			e.ContractNumber,
			truncate(e.InsuredName, 32),
			models.PaymentMethodLabel(e.PaymentMethod),
			e.Amount.StringFixed(3),
		}
		for i, c := range cells {
			align := "L"
			if i == len(cells)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render session report: %w", err)
	}
	return buf.Bytes(), nil
}

// Close renders the report, archives the PDF and mails it. It returns the stored path.
func (s *SessionReportService) Close(ctx context.Context, session models.Session) (string, error) {
	report, err := s.Build(ctx, session.LedgerDate, session.Username)
	if err != nil {
		return "", err
	}

	pdf, err := s.RenderPDF(report)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("feuille_caisse_%s_%s.pdf", session.Username, report.Day)
	path := ""
	if s.storage != nil {
		path, err = s.storage.SaveBytes(pdf, filename, storage.DirSessionReports, session.LedgerDate)
		if err != nil {
			return "", err
		}
	}

	if s.emailSvc != nil {
		if err := s.emailSvc.SendSessionReport(ctx, report, filename, pdf); err != nil {
			// The archived copy is still available
			logger.Error("Failed to email session report", "user", session.Username, "day", report.Day, "error", err)
		}
	}

	logger.Info("Session closed", "user", session.Username, "day", report.Day, "entries", len(report.Entries), "path", path)
	return path, nil
}

// sessionQRPayload is the text encoded in the report QR code
func sessionQRPayload(r *models.SessionReport) string {
	return strings.Join([]string{
		"FEUILLE-CAISSE",
		r.Day,
		r.Username,
		fmt.Sprintf("N=%d", r.TotalContracts),
		"PRIME=" + r.TotalPremium.StringFixed(3),
		"CREDIT=" + r.TotalCredit.StringFixed(3),
		"SOLDE=" + r.TotalAmount.StringFixed(3),
	}, "|")
}

func displayReportDay(day string) string {
	t, err := time.Parse(models.DateLayout, day)
	if err != nil {
		return day
	}
	return displayDate(t)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
