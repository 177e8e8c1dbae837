package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateSepRe    = regexp.MustCompile(`[/-]`)
	currencyRe   = regexp.MustCompile(`[^0-9.\-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeDate coerces a date string into zero-padded YYYY-MM-DD form.
// Canonical input is returned unchanged. Three-part dates separated by "/" or
// "-" are accepted: a four-digit first part is treated as year-first,
// otherwise the date is read day-first and reinterpreted as month-first only
// when the month slot exceeds 12. The ambiguous case ("03/12/2025") therefore
// resolves day-first to 2025-12-03; this tie-break is deliberate and matches
// the ledger's historical behavior.
func NormalizeDate(value string) (string, error) {
	s := strings.TrimSpace(value)
	if isoDateRe.MatchString(s) {
		return s, nil
	}

	parts := dateSepRe.Split(s, -1)
	if len(parts) != 3 {
		return "", &ValidationError{Field: "date", Message: fmt.Sprintf("unrecognized date format: %q", value)}
	}

	nums := make([]int, 3)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil {
			return "", &ValidationError{Field: "date", Message: fmt.Sprintf("unrecognized date format: %q", value)}
		}
		parts[i] = part
		nums[i] = n
	}

	var year, month, day int
	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		if len(parts[2]) != 4 {
			return "", &ValidationError{Field: "date", Message: fmt.Sprintf("four-digit year required: %q", value)}
		}
		day, month, year = nums[0], nums[1], nums[2]
		if month > 12 && day <= 12 {
			day, month = month, day
		}
	}

	if month < 1 || month > 12 {
		return "", &ValidationError{Field: "date", Message: fmt.Sprintf("month out of range: %q", value)}
	}
	if day < 1 || day > 31 {
		return "", &ValidationError{Field: "date", Message: fmt.Sprintf("day out of range: %q", value)}
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// NormalizeCurrency strips currency symbols, code prefixes and thousands
// separators from a monetary string and returns the amount rounded to two
// decimal places.
func NormalizeCurrency(value string) (decimal.Decimal, error) {
	cleaned := currencyRe.ReplaceAllString(value, "")
	if cleaned == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Message: fmt.Sprintf("no numeric value in %q", value)}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Message: fmt.Sprintf("not a numeric amount: %q", value)}
	}
	return d.Round(2), nil
}

// NormalizeQuantity strips the same junk characters as NormalizeCurrency but
// keeps the full precision of the value. Quantities are plain reals (hours,
// sessions, kilometers) and take part in arithmetic checks unrounded.
func NormalizeQuantity(value string) (decimal.Decimal, error) {
	cleaned := currencyRe.ReplaceAllString(value, "")
	if cleaned == "" {
		return decimal.Zero, &ValidationError{Field: "quantity", Message: fmt.Sprintf("no numeric value in %q", value)}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "quantity", Message: fmt.Sprintf("not a numeric quantity: %q", value)}
	}
	return d, nil
}

// NormalizeText collapses all whitespace runs, including newlines, to single
// spaces and trims both ends.
func NormalizeText(value string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(value, " "))
}
