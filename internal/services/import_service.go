package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ImportResult summarizes an imported month
type ImportResult struct {
	Month    int      `json:"month"`
	Year     int      `json:"year"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportService loads the monthly terme schedules sent by the insurer
type ImportService struct {
	repo repository.TermeReferenceRepository
	loc  *time.Location
}

// NewImportService creates a new import service
func NewImportService(repo repository.TermeReferenceRepository, loc *time.Location) *ImportService {
	if loc == nil {
		loc = time.Local
	}
	return &ImportService{repo: repo, loc: loc}
}

// ImportTermeXLSX reads the first sheet: number, premium, maturity, insured; the header row is skipped
func (s *ImportService) ImportTermeXLSX(ctx context.Context, month, year int, r io.Reader, importedBy string) (*ImportResult, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ValidationError{Field: "file", Err: ErrInvalidInput}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	raw := make([][4]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		var cells [4]string
		for j := 0; j < len(cells) && j < len(row); j++ {
			cells[j] = row[j]
		}
		raw = append(raw, cells)
	}

	return s.store(ctx, month, year, raw, importedBy, 2)
}

// ImportTermeXML reads every <contract> element of the document
func (s *ImportService) ImportTermeXML(ctx context.Context, month, year int, r io.Reader, importedBy string) (*ImportResult, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, &ValidationError{Field: "file", Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
	}

	contracts := doc.FindElements("//contract")
	raw := make([][4]string, 0, len(contracts))
	for _, el := range contracts {
		raw = append(raw, [4]string{
			childText(el, "number"),
			childText(el, "premium"),
			childText(el, "maturity"),
			childText(el, "insured"),
		})
	}

	return s.store(ctx, month, year, raw, importedBy, 1)
}

func childText(el *etree.Element, tag string) string {
	if child := el.SelectElement(tag); child != nil {
		return child.Text()
	}
	return ""
}

// store converts raw rows and replaces the month; firstLine numbers rows in error messages
func (s *ImportService) store(ctx context.Context, month, year int, raw [][4]string, importedBy string, firstLine int) (*ImportResult, error) {
	result := &ImportResult{Month: month, Year: year}
	refs := make([]models.TermeReference, 0, len(raw))

	for i, cells := range raw {
		line := firstLine + i
		number := strings.TrimSpace(cells[0])
		if number == "" && strings.TrimSpace(cells[1]) == "" {
			continue
		}

		premium, err := ParseAmount(cells[1])
		if number == "" || err != nil || !premium.IsPositive() {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("ligne %d: numéro ou prime invalide", line))
			continue
		}

		maturity, err := ExcelSerialToDate(cells[2], s.loc)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("ligne %d: échéance invalide %q", line, cells[2]))
			continue
		}

		refs = append(refs, models.TermeReference{
			Month:          month,
			Year:           year,
			ContractNumber: number,
			Premium:        premium,
			Maturity:       maturity,
			InsuredName:    strings.TrimSpace(cells[3]),
			ImportedBy:     importedBy,
		})
	}

	if len(refs) == 0 {
		return nil, &ValidationError{Field: "file", Err: ErrInvalidInput}
	}

	if err := s.repo.ReplaceMonth(ctx, month, year, refs); err != nil {
		return nil, fmt.Errorf("failed to store terme references: %w", err)
	}

	result.Imported = len(refs)
	logger.Info("Terme references imported",
		"month", month,
		"year", year,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"by", importedBy,
	)
	return result, nil
}

// ListTermeMonths returns the months available for lookup
func (s *ImportService) ListTermeMonths(ctx context.Context) ([]models.TermeMonth, error) {
	return s.repo.Months(ctx)
}

// SearchTermeReference returns the stored rows of a contract, latest month first
func (s *ImportService) SearchTermeReference(ctx context.Context, contractNumber string) ([]models.TermeReference, error) {
	contractNumber = strings.TrimSpace(contractNumber)
	if contractNumber == "" {
		return nil, &ValidationError{Field: "contract_number", Err: ErrInvalidInput}
	}
	return s.repo.FindByContractNumber(ctx, contractNumber)
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return &ValidationError{Field: "month", Err: ErrInvalidInput}
	}
	if year < 2000 || year > 2100 {
		return &ValidationError{Field: "year", Err: ErrInvalidInput}
	}
	return nil
}

// excelEpoch is day zero of the 1900 date system once the fictitious 1900-02-29 is accounted for
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ExcelSerialToDate converts an Excel serial day number to a date.
// Values already written as YYYY-MM-DD or DD/MM/YYYY are parsed as such.
func ExcelSerialToDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)

	if t, err := time.ParseInLocation(models.DateLayout, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("02/01/2006", value, loc); err == nil {
		return t, nil
	}

	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 1 {
		return time.Time{}, fmt.Errorf("invalid excel date %q", value)
	}
	day := excelEpoch.AddDate(0, 0, int(math.Floor(serial)))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc), nil
}
