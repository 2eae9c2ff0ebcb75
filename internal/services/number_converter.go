package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var thousandDivisor = decimal.NewFromInt(1000)

// AmountToWords spells a dinar amount in French, millimes as a fraction of 1000.
// Example: 1950.5 -> "MILLE NEUF CENT CINQUANTE DINARS ET 500/1000"
func AmountToWords(amount decimal.Decimal) string {
	prefix := ""
	if amount.IsNegative() {
		prefix = "MOINS "
		amount = amount.Abs()
	}

	amount = amount.Round(3)
	dinars := amount.Truncate(0)
	millimes := amount.Sub(dinars).Mul(thousandDivisor).IntPart()

	n := dinars.IntPart()
	unit := "DINARS"
	if n <= 1 {
		unit = "DINAR"
	}

	return fmt.Sprintf("%s%s %s ET %03d/1000", prefix, strings.ToUpper(convertNumberToWords(n)), unit, millimes)
}

var units = []string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
}

var tens = []string{
	"", "dix", "vingt", "trente", "quarante", "cinquante", "soixante",
}

// convertNumberToWords spells n using the traditional French rules
func convertNumberToWords(n int64) string {
	if n < 0 {
		return "moins " + convertNumberToWords(-n)
	}
	if n < 17 {
		return units[n]
	}
	if n < 20 {
		return "dix-" + units[n-10]
	}
	if n < 70 {
		t, u := n/10, n%10
		switch u {
		case 0:
			return tens[t]
		case 1:
			return tens[t] + " et un"
		}
		return tens[t] + "-" + units[u]
	}
	if n < 80 {
		if n == 71 {
			return "soixante et onze"
		}
		return "soixante-" + convertNumberToWords(n-60)
	}
	if n < 100 {
		if n == 80 {
			return "quatre-vingts"
		}
		return "quatre-vingt-" + convertNumberToWords(n-80)
	}
	if n < 1000 {
		h, rest := n/100, n%100
		head := "cent"
		if h > 1 {
			head = units[h] + " cent"
			if rest == 0 {
				return head + "s"
			}
		}
		if rest == 0 {
			return head
		}
		return head + " " + convertNumberToWords(rest)
	}
	if n < 1000000 {
		th, rest := n/1000, n%1000
		head := "mille"
		if th > 1 {
			// cent and vingt stay singular before mille
			head = strings.TrimSuffix(convertNumberToWords(th), "s") + " mille"
		}
		if rest == 0 {
			return head
		}
		return head + " " + convertNumberToWords(rest)
	}
	if n < 1000000000 {
		m, rest := n/1000000, n%1000000
		head := convertNumberToWords(m) + " million"
		if m > 1 {
			head += "s"
		}
		if rest == 0 {
			return head
		}
		return head + " " + convertNumberToWords(rest)
	}

	b, rest := n/1000000000, n%1000000000
	head := convertNumberToWords(b) + " milliard"
	if b > 1 {
		head += "s"
	}
	if rest == 0 {
		return head
	}
	return head + " " + convertNumberToWords(rest)
}
