package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-assurance/internal/services"
	"github.com/sjperalta/fintera-assurance/internal/storage"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
)

// TermeReferenceHandler serves the monthly terme schedules
type TermeReferenceHandler struct {
	importService *services.ImportService
	storage       *storage.LocalStorage
}

func NewTermeReferenceHandler(importService *services.ImportService, storage *storage.LocalStorage) *TermeReferenceHandler {
	return &TermeReferenceHandler{importService: importService, storage: storage}
}

// @Summary Search Terme References
// @Description Looks up a contract in the imported schedules to prefill the intake form
// @Tags Terme References
// @Produce json
// @Param contract_number query string true "Contract number"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /terme-references [get]
func (h *TermeReferenceHandler) Search(c *gin.Context) {
	number := strings.TrimSpace(c.Query("contract_number"))
	if number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "numéro de contrat requis", "field": "contract_number"})
		return
	}

	refs, err := h.importService.SearchTermeReference(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"references": refs})
}

// @Summary List Imported Months
// @Tags Terme References
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /terme-references/months [get]
func (h *TermeReferenceHandler) Months(c *gin.Context) {
	months, err := h.importService.ListTermeMonths(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// @Summary Import Terme References
// @Description Replaces the schedule of a month from an Excel or XML file (admin only)
// @Tags Terme References
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Schedule (.xlsx or .xml)"
// @Param month formData int true "Month (1-12)"
// @Param year formData int true "Year"
// @Success 201 {object} services.ImportResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /terme-references/import [post]
func (h *TermeReferenceHandler) Import(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	month, errMonth := strconv.Atoi(c.PostForm("month"))
	year, errYear := strconv.Atoi(c.PostForm("year"))
	if errMonth != nil || errYear != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mois et année requis"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fichier requis", "field": "file"})
		return
	}
	if file.Size > storage.MaxImportSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fichier trop volumineux (10 Mo maximum)", "field": "file"})
		return
	}

	kind := storage.ImportKind(file.Filename)
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format non supporté, utilisez .xlsx ou .xml", "field": "file"})
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer src.Close()

	archived, err := h.storage.Save(src, file.Filename, storage.DirImports, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	stored, err := h.storage.Open(archived)
	if err != nil {
		respondError(c, err)
		return
	}
	defer stored.Close()

	var result *services.ImportResult
	switch kind {
	case storage.ImportKindXLSX:
		result, err = h.importService.ImportTermeXLSX(c.Request.Context(), month, year, stored, session.Username)
	case storage.ImportKindXML:
		result, err = h.importService.ImportTermeXML(c.Request.Context(), month, year, stored, session.Username)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Terme references imported", "file", archived, "month", month, "year", year, "rows", result.Imported)
	c.JSON(http.StatusCreated, result)
}
