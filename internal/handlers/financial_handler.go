package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-assurance/internal/middleware"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/services"
)

// FinancialHandler records cash movements that are not contracts
type FinancialHandler struct {
	financialService *services.FinancialService
	loc              *time.Location
}

func NewFinancialHandler(financialService *services.FinancialService, loc *time.Location) *FinancialHandler {
	return &FinancialHandler{financialService: financialService, loc: loc}
}

// adminOnlyKinds may only be recorded by an administrator
var adminOnlyKinds = map[string]bool{
	models.FinancialKindRebate: true,
	models.FinancialKindClaim:  true,
}

// @Summary Record Financial Entry
// @Description Records a dépense, recette exceptionnelle, ristourne or sinistre in the ledger.
// @Description Ristourne and sinistre are reserved to administrators.
// @Tags Financial
// @Accept json
// @Produce json
// @Param kind path string true "depense, recette, ristourne or sinistre"
// @Param request body object true "Entry"
// @Success 201 {object} services.FinancialResult
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /financial/{kind} [post]
func (h *FinancialHandler) Create(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	kind := c.Param("kind")
	if adminOnlyKinds[kind] && !session.IsAdmin {
		respondError(c, services.ErrForbidden)
		return
	}

	ctx := c.Request.Context()
	var record func() (*services.FinancialResult, error)
	var bindErr error

	switch kind {
	case models.FinancialKindExpense:
		var input services.ExpenseInput
		bindErr = BindNestedOrFlat(c, kind, &input)
		record = func() (*services.FinancialResult, error) {
			return h.financialService.RecordExpense(ctx, session, input)
		}
	case models.FinancialKindReceipt:
		var input services.ReceiptInput
		bindErr = BindNestedOrFlat(c, kind, &input)
		record = func() (*services.FinancialResult, error) {
			return h.financialService.RecordExceptionalReceipt(ctx, session, input)
		}
	case models.FinancialKindRebate:
		var input services.RebateInput
		bindErr = BindNestedOrFlat(c, kind, &input)
		record = func() (*services.FinancialResult, error) {
			return h.financialService.RecordRebate(ctx, session, input)
		}
	case models.FinancialKindClaim:
		var input services.ClaimInput
		bindErr = BindNestedOrFlat(c, kind, &input)
		record = func() (*services.FinancialResult, error) {
			return h.financialService.RecordClaim(ctx, session, input)
		}
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "type d'opération inconnu"})
		return
	}

	if bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	result, err := record()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary List Financial Entries
// @Tags Financial
// @Produce json
// @Param kind path string true "depense, recette, ristourne or sinistre"
// @Param date query string false "Ledger day (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /financial/{kind} [get]
func (h *FinancialHandler) Index(c *gin.Context) {
	var day *time.Time
	if v := c.Query("date"); v != "" {
		d, err := services.ParseDay(v, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidInput.Error(), "field": "date"})
			return
		}
		day = &d
	}

	// Agents only see their current ledger day
	if day == nil && !middleware.IsAdmin(c) {
		if session, ok := middleware.GetSession(c); ok {
			ledgerDay := session.LedgerDate
			day = &ledgerDay
		}
	}

	rows, err := h.financialService.ListFinancial(c.Request.Context(), c.Param("kind"), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": c.Param("kind"), "entries": rows})
}
