package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-assurance/internal/middleware"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/sjperalta/fintera-assurance/internal/services"
	"github.com/sjperalta/fintera-assurance/internal/storage"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Contract       *ContractHandler
	Credit         *CreditHandler
	Financial      *FinancialHandler
	TermeReference *TermeReferenceHandler
	Report         *ReportHandler
	Job            *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage, loc *time.Location) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(),
		Auth:           NewAuthHandler(svcs.Auth),
		Contract:       NewContractHandler(svcs.Ledger, svcs.Export),
		Credit:         NewCreditHandler(svcs.Credit, svcs.Report, loc),
		Financial:      NewFinancialHandler(svcs.Financial, loc),
		TermeReference: NewTermeReferenceHandler(svcs.Import, storage),
		Report:         NewReportHandler(svcs.SessionReport, svcs.Job, loc),
		Job:            NewJobHandler(svcs.Job),
	}
}

// respondError translates service errors into HTTP responses
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var duplicateErr *services.DuplicateContractError

	switch {
	case errors.As(err, &duplicateErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      duplicateErr.Error(),
			"settled_on": duplicateErr.SettledOn,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Err.Error(), "field": validationErr.Field})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateEntry), errors.Is(err, services.ErrLockNotObtained):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOverpayment), errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "erreur interne, veuillez réessayer"})
	}
}

// currentSession returns the agent session or aborts with 401
func currentSession(c *gin.Context) (models.Session, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrSessionExpired.Error()})
	}
	return session, ok
}

// listQuery reads the common pagination and search parameters
func listQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 200 {
		query.PerPage = 20
	}
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.DefaultQuery("sort_dir", "asc")
	return query
}

// copyFilters copies the named query parameters into query.Filters
func copyFilters(c *gin.Context, query *repository.ListQuery, names ...string) {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			query.Filters[name] = v
		}
	}
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": query.TotalPages(total),
	}
}

// dateWindow parses the optional from/to parameters
func dateWindow(c *gin.Context, loc *time.Location) (models.DateWindow, error) {
	var window models.DateWindow
	if v := c.Query("from"); v != "" {
		from, err := services.ParseDay(v, loc)
		if err != nil {
			return window, &services.ValidationError{Field: "from", Err: services.ErrInvalidInput}
		}
		window.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := services.ParseDay(v, loc)
		if err != nil {
			return window, &services.ValidationError{Field: "to", Err: services.ErrInvalidInput}
		}
		window.To = &to
	}
	if window.From != nil && window.To != nil && window.To.Before(*window.From) {
		return window, &services.ValidationError{Field: "to", Err: services.ErrInvalidInput}
	}
	return window, nil
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide", "field": name})
		return 0, false
	}
	return uint(id), true
}

// attachment writes a downloadable file
func attachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	c.Data(http.StatusOK, contentType, data)
}
