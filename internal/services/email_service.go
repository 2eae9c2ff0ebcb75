package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/fintera-assurance/internal/config"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// EmailService sends session reports through Resend
type EmailService struct {
	config *config.Config
	emails resend.EmailsSvc
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config: cfg,
		emails: client.Emails,
	}
}

// Enabled reports whether reports can be mailed
func (s *EmailService) Enabled() bool {
	return s.config != nil && s.config.EmailEnabled()
}

// SendSessionReport mails the cash sheet with its PDF attached
func (s *EmailService) SendSessionReport(ctx context.Context, report *models.SessionReport, filename string, pdf []byte) error {
	if !s.Enabled() {
		logger.Info("Email disabled, session report not sent", "user", report.Username, "day", report.Day)
		return nil
	}

	data := struct {
		Username       string
		Day            string
		TotalContracts int
		TotalPremium   string
		TotalCredit    string
		NetPremium     string
		Financial      string
		PaymentMethods []methodLine
		GeneratedAt    string
	}{
		Username:       report.Username,
		Day:            displayReportDay(report.Day),
		TotalContracts: report.TotalContracts,
		TotalPremium:   report.TotalPremium.StringFixed(3),
		TotalCredit:    report.TotalCredit.StringFixed(3),
		NetPremium:     report.NetPremium.StringFixed(3),
		Financial:      report.FinancialBalance.StringFixed(3),
		GeneratedAt:    report.GeneratedAt.Format("02/01/2006 15:04"),
	}
	for _, method := range sortedKeys(report.ByPaymentMethod) {
		mt := report.ByPaymentMethod[method]
		data.PaymentMethods = append(data.PaymentMethods, methodLine{
			Label:  models.PaymentMethodLabel(method),
			Count:  mt.Count,
			Amount: mt.Amount.StringFixed(3),
		})
	}

	body, err := s.renderTemplate("session_report.html", data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Feuille de caisse %s du %s", report.Username, data.Day)
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      s.config.ReportRecipients,
		Subject: subject,
		Html:    body,
		Attachments: []*resend.Attachment{
			{
				Content:     pdf,
				Filename:    filename,
				ContentType: "application/pdf",
			},
		},
	}
	if _, err := s.emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send session report: %w", err)
	}

	logger.Info("Email sent", "subject", subject, "recipients", len(s.config.ReportRecipients))
	return nil
}

type methodLine struct {
	Label  string
	Count  int
	Amount string
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
