package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/services"
)

// ReportHandler serves the end-of-day cash sheet
type ReportHandler struct {
	sessionReport *services.SessionReportService
	jobService    *services.JobService
	loc           *time.Location
}

func NewReportHandler(sessionReport *services.SessionReportService, jobService *services.JobService, loc *time.Location) *ReportHandler {
	return &ReportHandler{sessionReport: sessionReport, jobService: jobService, loc: loc}
}

// reportTarget resolves the day and agent of the requested report.
// Administrators may look at another day or agent; agents only see their own session.
func (h *ReportHandler) reportTarget(c *gin.Context) (time.Time, string, bool) {
	session, ok := currentSession(c)
	if !ok {
		return time.Time{}, "", false
	}

	day, username := session.LedgerDate, session.Username
	if !session.IsAdmin {
		return day, username, true
	}

	if v := c.Query("date"); v != "" {
		d, err := services.ParseDay(v, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidInput.Error(), "field": "date"})
			return time.Time{}, "", false
		}
		day = d
	}
	if v := c.Query("user"); v != "" {
		username = v
	}
	return day, username, true
}

// @Summary Session Report
// @Description Totals of the ledger rows written by the agent during the day
// @Tags Reports
// @Produce json
// @Param date query string false "Day (admin only, YYYY-MM-DD)"
// @Param user query string false "Agent (admin only)"
// @Success 200 {object} models.SessionReport
// @Security BearerAuth
// @Router /reports/session [get]
func (h *ReportHandler) Session(c *gin.Context) {
	day, username, ok := h.reportTarget(c)
	if !ok {
		return
	}

	report, err := h.sessionReport.Build(c.Request.Context(), day, username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Session Report PDF
// @Tags Reports
// @Produce application/pdf
// @Param date query string false "Day (admin only, YYYY-MM-DD)"
// @Param user query string false "Agent (admin only)"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/session/pdf [get]
func (h *ReportHandler) SessionPDF(c *gin.Context) {
	day, username, ok := h.reportTarget(c)
	if !ok {
		return
	}

	report, err := h.sessionReport.Build(c.Request.Context(), day, username)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := h.sessionReport.RenderPDF(report)
	if err != nil {
		respondError(c, err)
		return
	}

	attachment(c, "application/pdf", "feuille_caisse_"+username+"_"+day.Format(models.DateLayout)+".pdf", pdf)
}

// @Summary Close Session
// @Description Renders, archives and mails the cash sheet of the current session in the background
// @Tags Reports
// @Produce json
// @Success 202 {object} map[string]string
// @Security BearerAuth
// @Router /reports/session/close [post]
func (h *ReportHandler) Close(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	h.jobService.EnqueueSessionClose(session)
	c.JSON(http.StatusAccepted, gin.H{
		"message":     "feuille de caisse en cours de génération",
		"ledger_date": session.LedgerDay(),
	})
}
