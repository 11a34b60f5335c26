// Package currencyutils normalizes amount strings from bank statements into
// signed decimals and formats them back.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	debitMarkerRe  = regexp.MustCompile(`(?i)\b(?:DR|DEBIT(?:ED)?)\b\.?`)
	creditMarkerRe = regexp.MustCompile(`(?i)\b(?:CR|CREDIT(?:ED)?)\b\.?`)
	currencyCodeRe = regexp.MustCompile(`(?i)\b(?:INR|USD|EUR|GBP|CHF|JPY|AUD|CAD|SGD|RS)\b\.?`)
	currencySymRe  = regexp.MustCompile(`[€$£¥₣₤₧₹₺₽₩฿₫₲₴₸₼₪\s'’]`)
	plainDecimalRe = regexp.MustCompile(`^\d*\.?\d+$`)
)

// NormalizeAmount parses an amount string into a signed decimal.
//
// Currency symbols, currency codes and whitespace are stripped. A leading
// or trailing '-', enclosing parentheses or a DR/DEBIT marker make the
// amount negative. Thousands separators (',', '.', apostrophe) are removed
// using the position of the last separator to find the decimal point.
// It returns ok=false when nothing parseable remains.
func NormalizeAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if debitMarkerRe.MatchString(s) {
		negative = true
		s = debitMarkerRe.ReplaceAllString(s, "")
	}
	s = creditMarkerRe.ReplaceAllString(s, "")
	s = currencyCodeRe.ReplaceAllString(s, "")
	s = currencySymRe.ReplaceAllString(s, "")

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = true
		s = s[:len(s)-1]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	s = StandardizeSeparators(s)
	if !plainDecimalRe.MatchString(s) {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, true
}

// ParseAmount is NormalizeAmount with an error for callers that need one.
// An empty string parses as zero.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, nil
	}
	amount, ok := NormalizeAmount(amountStr)
	if !ok {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s'", amountStr)
	}
	return amount, nil
}

// StandardizeSeparators rewrites an unsigned number so that '.' is the only
// separator and marks the decimal point. Handles "1,234.56", "1.234,56",
// "1,00,000", "1234,56" and "1.234.567".
func StandardizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastDot > lastComma {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			return parts[0] + "." + parts[1]
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}

// FormatAmount formats a decimal amount with two decimal places and an optional currency.
// The output is accepted by NormalizeAmount.
func FormatAmount(amount decimal.Decimal, currency string) string {
	formattedAmount := amount.StringFixed(2)

	if currency != "" {
		switch strings.ToUpper(currency) {
		case "EUR":
			return "€" + formattedAmount
		case "USD":
			return "$" + formattedAmount
		case "GBP":
			return "£" + formattedAmount
		case "INR":
			return "₹" + formattedAmount
		default:
			return strings.ToUpper(currency) + " " + formattedAmount
		}
	}

	return formattedAmount
}
