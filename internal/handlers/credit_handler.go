package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/services"
)

// CreditHandler serves credits, their payments and statistics
type CreditHandler struct {
	creditService *services.CreditService
	reportService *services.ReportService
	loc           *time.Location
}

func NewCreditHandler(creditService *services.CreditService, reportService *services.ReportService, loc *time.Location) *CreditHandler {
	return &CreditHandler{creditService: creditService, reportService: reportService, loc: loc}
}

var creditFilters = []string{"status", "branch", "created_by", "start_date", "end_date", "due_from", "due_to"}

type RecordPaymentRequest struct {
	Amount services.Amount `json:"amount"`
}

type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	EffectiveDate string `json:"effective_date"`
}

// @Summary List Credits
// @Tags Credits
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Contract number or insured name"
// @Param status query string false "unpaid, partially_paid, paid, overdue"
// @Param due_from query string false "First due day (YYYY-MM-DD)"
// @Param due_to query string false "Last due day (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /credits [get]
func (h *CreditHandler) Index(c *gin.Context) {
	query := listQuery(c)
	copyFilters(c, query, creditFilters...)

	credits, total, err := h.creditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	today := h.creditService.Today()
	responses := make([]models.CreditResponse, 0, len(credits))
	for i := range credits {
		responses = append(responses, credits[i].ToResponse(today))
	}

	c.JSON(http.StatusOK, gin.H{
		"credits":    responses,
		"pagination": pagination(query, total),
	})
}

// @Summary Show Credit
// @Tags Credits
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Success 200 {object} models.CreditResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id} [get]
func (h *CreditHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "credit_id")
	if !ok {
		return
	}

	credit, err := h.creditService.GetCredit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credit.ToResponse(h.creditService.Today()))
}

// @Summary Credit Statistics
// @Description Totals by status, overdue and due-soon credits and the recovery rate over an optional creation window
// @Tags Credits
// @Produce json
// @Param from query string false "First creation day (YYYY-MM-DD)"
// @Param to query string false "Last creation day (YYYY-MM-DD)"
// @Success 200 {object} models.CreditStatistics
// @Security BearerAuth
// @Router /credits/statistics [get]
func (h *CreditHandler) Statistics(c *gin.Context) {
	window, err := dateWindow(c, h.loc)
	if err != nil {
		respondError(c, err)
		return
	}

	query := listQuery(c)
	copyFilters(c, query, "branch", "created_by")

	stats, err := h.creditService.Statistics(c.Request.Context(), query, window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Credit Statement
// @Description Downloads the filtered credits and their statistics as a PDF
// @Tags Credits
// @Produce application/pdf
// @Param from query string false "First creation day (YYYY-MM-DD)"
// @Param to query string false "Last creation day (YYYY-MM-DD)"
// @Param status query string false "Status"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /credits/statement [get]
func (h *CreditHandler) Statement(c *gin.Context) {
	window, err := dateWindow(c, h.loc)
	if err != nil {
		respondError(c, err)
		return
	}

	query := listQuery(c)
	copyFilters(c, query, creditFilters...)

	if c.Query("format") == "html" {
		html, err := h.reportService.CreditStatementHTML(c.Request.Context(), query, window)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		return
	}

	pdf, err := h.reportService.CreditStatementPDF(c.Request.Context(), query, window)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := "etat_credits_" + h.creditService.Today().Format(models.DateLayout) + ".pdf"
	attachment(c, "application/pdf", filename, pdf.Bytes())
}

// @Summary Record Credit Payment
// @Description Adds a payment to a credit; the credit becomes paid once the balance reaches zero
// @Tags Credits
// @Accept json
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param request body RecordPaymentRequest true "Payment"
// @Success 200 {object} services.PaymentResult
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/payments [post]
func (h *CreditHandler) RecordPayment(c *gin.Context) {
	id, ok := parseID(c, "credit_id")
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	result, err := h.creditService.RecordPayment(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credit":      result.Credit.ToResponse(h.creditService.Today()),
		"new_balance": result.NewBalance,
		"status":      result.Status,
	})
}

// @Summary Update Credit Status
// @Tags Credits
// @Accept json
// @Produce json
// @Param credit_id path int true "Credit ID"
// @Param request body UpdateStatusRequest true "Status"
// @Success 200 {object} models.CreditResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /credits/{credit_id}/status [patch]
func (h *CreditHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "credit_id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := BindNestedOrFlat(c, "credit", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "le statut est requis", "field": "status"})
		return
	}

	var effective *time.Time
	if req.EffectiveDate != "" {
		day, err := services.ParseDay(req.EffectiveDate, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidInput.Error(), "field": "effective_date"})
			return
		}
		effective = &day
	}

	credit, err := h.creditService.UpdateStatus(c.Request.Context(), id, req.Status, effective)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credit.ToResponse(h.creditService.Today()))
}
