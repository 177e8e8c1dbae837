// Package parsing turns raw invoice text into validated invoice records using
// an externally supplied pattern registry.
package parsing

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ndis-tools/invoice-ledger/internal/invoice"
)

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

var (
	serviceDateRe = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`)
	serviceCodeRe = regexp.MustCompile(`([A-Za-z0-9_\-]+):`)
)

// Parser extracts structured invoices from raw document text. It holds only
// the immutable registry and a time source, so a single Parser is safe to use
// from multiple goroutines.
type Parser struct {
	registry   *Registry
	timeSource TimeSource
}

// NewParser creates a Parser over a compiled registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{
		registry:   registry,
		timeSource: &defaultTimeSource{},
	}
}

// NewParserWithTimeSource creates a Parser with a custom time source for testing.
func NewParserWithTimeSource(registry *Registry, timeSource TimeSource) *Parser {
	return &Parser{
		registry:   registry,
		timeSource: timeSource,
	}
}

// DetectInvoiceType returns the vendor profile whose display name occurs in
// the text, or the generic fallback profile.
func (p *Parser) DetectInvoiceType(text string) *Profile {
	return p.registry.Detect(text)
}

// extractField applies one extraction pattern and returns the first capture
// group of the first match, trimmed. A miss is not an error at this level; it
// logs a warning and returns the empty string.
func extractField(text string, re *regexp.Regexp, field string) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 || strings.TrimSpace(m[1]) == "" {
		slog.Warn("field not found", "field", field)
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractLineItems locates the table region between the table markers and
// builds a line item per row match. Rows that fail validation are skipped
// with a logged error; the remaining rows are still processed.
func (p *Parser) extractLineItems(text string, profile *Profile) []invoice.LineItem {
	start := profile.Table.Start.FindStringIndex(text)
	if start == nil {
		slog.Warn("line item table not found", "vendor", profile.Name)
		return nil
	}
	region := text[start[1]:]
	if end := profile.Table.End.FindStringIndex(region); end != nil {
		region = region[:end[0]]
	}

	items := make([]invoice.LineItem, 0)
	for _, row := range profile.Table.Row.FindAllStringSubmatch(region, -1) {
		description := strings.TrimSpace(row[1])
		item, err := invoice.NewLineItem(invoice.LineItemInput{
			ServiceDate:        p.serviceDate(description),
			ServiceCode:        serviceCode(description),
			Quantity:           row[2],
			UnitPrice:          row[3],
			LineTotal:          row[4],
			ServiceDescription: description,
		})
		if err != nil {
			slog.Error("skipping line item row", "row", description, "error", err)
			continue
		}
		items = append(items, *item)
	}
	return items
}

// serviceDate returns a date embedded in the description, or the current
// processing date when the description carries none. The processing-date
// fallback (rather than the invoice date) is long-standing behavior and is
// kept as is.
func (p *Parser) serviceDate(description string) string {
	if m := serviceDateRe.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return p.timeSource.Now().Format("2006-01-02")
}

// serviceCode returns a "CODE:" token from the description, or its first
// whitespace-delimited word.
func serviceCode(description string) string {
	if m := serviceCodeRe.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ParseInvoice extracts, validates and assembles one invoice from raw text.
// Missing invoice number, invoice date or total amount is fatal for the
// document; missing line items and a missing participant are not.
func (p *Parser) ParseInvoice(text string) (*invoice.Invoice, error) {
	profile := p.registry.Detect(text)

	number := extractField(text, profile.InvoiceNumber, "invoice_number")
	date := extractField(text, profile.InvoiceDate, "invoice_date")
	due := extractField(text, profile.DueDate, "due_date")
	total := extractField(text, profile.TotalAmount, "total_amount")
	participant := extractField(text, profile.Participant, "participant")

	var missing []string
	if number == "" {
		missing = append(missing, "invoice_number")
	}
	if date == "" {
		missing = append(missing, "invoice_date")
	}
	if total == "" {
		missing = append(missing, "total_amount")
	}
	if len(missing) > 0 {
		return nil, &ParseError{Message: fmt.Sprintf("failed to extract required fields: %s", strings.Join(missing, ", "))}
	}

	if participant == "" {
		participant = "Unknown"
	}

	items := p.extractLineItems(text, profile)

	inv, err := invoice.NewInvoice(invoice.InvoiceInput{
		InvoiceNumber:   number,
		InvoiceDate:     date,
		DueDate:         due,
		TotalAmount:     total,
		VendorName:      profile.Name,
		ParticipantName: participant,
		LineItems:       items,
	})
	if err != nil {
		return nil, &ParseError{Message: "assembling invoice", Err: err}
	}
	return inv, nil
}
