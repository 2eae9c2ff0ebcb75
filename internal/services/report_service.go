package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
)

//go:embed templates/reports/*.html
var reportTemplates embed.FS

var reportFuncs = template.FuncMap{
	"money":       func(d decimal.Decimal) string { return d.StringFixed(3) },
	"statusLabel": models.CreditStatusLabel,
}

// ReportService renders printable statements through wkhtmltopdf
type ReportService struct {
	creditRepo repository.CreditRepository
	loc        *time.Location
	now        func() time.Time
}

// NewReportService creates a new report service
func NewReportService(creditRepo repository.CreditRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{creditRepo: creditRepo, loc: loc, now: time.Now}
}

type creditStatementData struct {
	GeneratedAt string
	Period      string
	Stats       models.CreditStatistics
	Credits     []models.CreditResponse
}

// CreditStatementHTML renders the filtered credits and their statistics
func (s *ReportService) CreditStatementHTML(ctx context.Context, query *repository.ListQuery, window models.DateWindow) ([]byte, error) {
	credits, err := s.creditRepo.FindAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load credits: %w", err)
	}

	now := s.now().In(s.loc)
	today := models.Day(now)

	data := creditStatementData{
		GeneratedAt: now.Format("02/01/2006 15:04"),
		Period:      windowLabel(window),
		Stats:       ComputeCreditStatistics(credits, window, today),
		Credits:     make([]models.CreditResponse, 0, len(credits)),
	}
	for i := range credits {
		if window.Contains(credits[i].CreatedAt) {
			data.Credits = append(data.Credits, credits[i].ToResponse(today))
		}
	}

	return s.renderHTML("credits.html", data)
}

// CreditStatementPDF converts the credit statement to PDF
func (s *ReportService) CreditStatementPDF(ctx context.Context, query *repository.ListQuery, window models.DateWindow) (*bytes.Buffer, error) {
	html, err := s.CreditStatementHTML(ctx, query, window)
	if err != nil {
		return nil, err
	}
	return generatePDF(html, wkhtmltopdf.OrientationLandscape)
}

func (s *ReportService) renderHTML(name string, data interface{}) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(reportFuncs).ParseFS(reportTemplates, "templates/reports/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// generatePDF converts an HTML page to PDF; the wkhtmltopdf binary must be on PATH
func generatePDF(html []byte, orientation string) (*bytes.Buffer, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(orientation)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("UTF-8")
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}

func windowLabel(w models.DateWindow) string {
	switch {
	case w.From != nil && w.To != nil:
		return fmt.Sprintf("du %s au %s", displayDate(*w.From), displayDate(*w.To))
	case w.From != nil:
		return "à partir du " + displayDate(*w.From)
	case w.To != nil:
		return "jusqu'au " + displayDate(*w.To)
	}
	return ""
}
