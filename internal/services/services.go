package services

import (
	"github.com/sjperalta/fintera-assurance/internal/config"
	"github.com/sjperalta/fintera-assurance/internal/jobs"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/sjperalta/fintera-assurance/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth          *AuthService
	Ledger        *LedgerService
	Credit        *CreditService
	Financial     *FinancialService
	Import        *ImportService
	SessionReport *SessionReportService
	Report        *ReportService
	Export        *ExportService
	Email         *EmailService
	Job           *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, locker Locker, agents []models.Agent, cfg *config.Config) *Services {
	loc := cfg.Location()
	emailSvc := NewEmailService(cfg)
	creditSvc := NewCreditService(repos.Credit, loc)
	sessionReportSvc := NewSessionReportService(repos.Ledger, store, emailSvc)

	return &Services{
		Auth:          NewAuthService(agents, cfg.JWTSecret, loc),
		Ledger:        NewLedgerService(repos.Ledger, repos.Terme, repos.Affaire, repos.Credit, repos.Financial, locker),
		Credit:        creditSvc,
		Financial:     NewFinancialService(repos.Ledger, repos.Financial),
		Import:        NewImportService(repos.TermeReference, loc),
		SessionReport: sessionReportSvc,
		Report:        NewReportService(repos.Credit, loc),
		Export:        NewExportService(repos.Ledger, loc),
		Email:         emailSvc,
		Job:           NewJobService(worker, creditSvc, sessionReportSvc),
	}
}
