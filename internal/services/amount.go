package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
)

var errEmptyAmount = errors.New("empty amount")

// Amount is a monetary input accepted as a JSON number or string.
// Both "1250.5" and "1250,500" parse; spaces used as thousand separators are ignored.
type Amount string

// UnmarshalJSON keeps the raw text so that malformed amounts are reported by the service
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*a = Amount(str)
		return nil
	}
	*a = Amount(s)
	return nil
}

// Decimal parses the amount
func (a Amount) Decimal() (decimal.Decimal, error) {
	return ParseAmount(string(a))
}

// IsZero reports whether no amount was given
func (a Amount) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// AmountOf formats d as an Amount input
func AmountOf(d decimal.Decimal) Amount {
	return Amount(d.String())
}

// ParseAmount parses a French or English formatted decimal.
// When both "," and "." appear, the last one is the decimal separator and the other groups thousands.
// A separator repeated on its own also groups thousands.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero, errEmptyAmount
	}

	commas, dots := strings.Count(s, ","), strings.Count(s, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// parsePositive returns the amount when it parses to a strictly positive number
func parsePositive(a Amount) (decimal.Decimal, bool) {
	d, err := a.Decimal()
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDay parses a YYYY-MM-DD day in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(models.DateLayout, strings.TrimSpace(s), loc)
}

// displayDate formats a day the way agents read it on screen
func displayDate(t time.Time) string {
	return t.Format("02/01/2006")
}
