package services

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-assurance/internal/jobs"
	"github.com/sjperalta/fintera-assurance/internal/models"
)

// Scheduled job names
const (
	JobMarkOverdue  = "mark-overdue"
	JobCloseSession = "close-session"
)

// overdueInterval is how often late credits are flagged
const overdueInterval = time.Hour

// JobService wires background work onto the worker
type JobService struct {
	worker        *jobs.Worker
	creditSvc     *CreditService
	sessionReport *SessionReportService
}

// NewJobService creates a new job service
func NewJobService(worker *jobs.Worker, creditSvc *CreditService, sessionReport *SessionReportService) *JobService {
	return &JobService{
		worker:        worker,
		creditSvc:     creditSvc,
		sessionReport: sessionReport,
	}
}

// Schedule describes a recurring job
type Schedule struct {
	Name  string `json:"name"`
	Every string `json:"every"`
}

// StartSchedules registers the recurring jobs
func (s *JobService) StartSchedules() {
	s.worker.ScheduleEveryImmediate(JobMarkOverdue, overdueInterval, s.markOverdue)
}

// Schedules lists the recurring jobs registered by StartSchedules
func (s *JobService) Schedules() []Schedule {
	return []Schedule{{Name: JobMarkOverdue, Every: overdueInterval.String()}}
}

// EnqueueMarkOverdue runs the overdue sweep now, outside its schedule
func (s *JobService) EnqueueMarkOverdue() {
	s.worker.EnqueueAsync(JobMarkOverdue, s.markOverdue)
}

func (s *JobService) markOverdue(ctx context.Context) error {
	_, err := s.creditSvc.MarkOverdue(ctx)
	return err
}

// EnqueueSessionClose renders, archives and mails the session report in the background
func (s *JobService) EnqueueSessionClose(session models.Session) {
	s.worker.EnqueueAsync(JobCloseSession, func(ctx context.Context) error {
		_, err := s.sessionReport.Close(ctx, session)
		return err
	})
}

// GetStatus returns the worker statistics
func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
