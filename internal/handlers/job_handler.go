package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-assurance/internal/jobs"
	"github.com/sjperalta/fintera-assurance/internal/services"
)

// JobHandler exposes the background worker to administrators
type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// JobStatusResponse is the worker state plus its recurring jobs
type JobStatusResponse struct {
	Worker    jobs.WorkerStats    `json:"worker"`
	Schedules []services.Schedule `json:"schedules"`
}

// Status returns the worker counters and the overdue sweep schedule
// @Summary Background job status
// @Description Worker counters (active, completed, failed, queue length, last runs) and recurring jobs
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} JobStatusResponse
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, JobStatusResponse{
		Worker:    h.jobService.GetStatus(),
		Schedules: h.jobService.Schedules(),
	})
}

// RunMarkOverdue queues the overdue credit sweep immediately
// @Summary Flag overdue credits now
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Router /jobs/mark-overdue [post]
func (h *JobHandler) RunMarkOverdue(c *gin.Context) {
	h.jobService.EnqueueMarkOverdue()
	c.JSON(http.StatusAccepted, gin.H{
		"message": "recherche des crédits en retard lancée",
		"job":     services.JobMarkOverdue,
	})
}
