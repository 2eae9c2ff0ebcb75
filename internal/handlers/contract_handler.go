package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-assurance/internal/services"
)

// ContractHandler serves the ledger of Terme and Affaire contracts
type ContractHandler struct {
	ledgerService *services.LedgerService
	exportService *services.ExportService
}

func NewContractHandler(ledgerService *services.LedgerService, exportService *services.ExportService) *ContractHandler {
	return &ContractHandler{ledgerService: ledgerService, exportService: exportService}
}

// ledgerFilters are the query parameters accepted by the ledger list and export
var ledgerFilters = []string{"category", "branch", "created_by", "payment_method", "payment_plan", "start_date", "end_date"}

// @Summary Submit Contract
// @Description Records a Terme or Affaire contract in the ledger, with its detail record and optional credit.
// @Description The body may be flat or nested under "contract".
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body services.SubmitContractInput true "Contract"
// @Success 201 {object} services.SubmitResult
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var input services.SubmitContractInput
	if err := BindNestedOrFlat(c, "contract", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	result, err := h.ledgerService.SubmitContract(c.Request.Context(), session, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary List Ledger
// @Description Get a paginated list of ledger entries
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Contract number or insured name"
// @Param category query string false "terme, affaire, depense, recette, ristourne, sinistre"
// @Param branch query string false "Branch"
// @Param created_by query string false "Agent"
// @Param start_date query string false "First ledger day (YYYY-MM-DD)"
// @Param end_date query string false "Last ledger day (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	query := listQuery(c)
	copyFilters(c, query, ledgerFilters...)

	entries, total, err := h.ledgerService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":    entries,
		"pagination": pagination(query, total),
	})
}

// @Summary Show Ledger Entry
// @Tags Contracts
// @Produce json
// @Param entry_id path int true "Ledger entry ID"
// @Success 200 {object} models.LedgerEntry
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{entry_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// @Summary Export Ledger
// @Description Downloads the filtered ledger as an Excel workbook
// @Tags Contracts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param category query string false "Category"
// @Param start_date query string false "First ledger day (YYYY-MM-DD)"
// @Param end_date query string false "Last ledger day (YYYY-MM-DD)"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /contracts/export [get]
func (h *ContractHandler) Export(c *gin.Context) {
	query := listQuery(c)
	copyFilters(c, query, ledgerFilters...)

	data, filename, err := h.exportService.LedgerXLSX(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, data)
}

// @Summary Delete Ledger Entry
// @Description Deletes a ledger entry and, best effort, its Terme or Affaire detail (admin only)
// @Tags Contracts
// @Produce json
// @Param entry_id path int true "Ledger entry ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{entry_id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteContract(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "enregistrement supprimé"})
}
