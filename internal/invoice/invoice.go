// Package invoice holds the validated data model for parsed invoices.
// Records are built through fallible factory functions; a returned value has
// passed every normalization and invariant check, there is no partially
// constructed state.
package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// amountTolerance bounds the acceptable drift on cross-field arithmetic.
var amountTolerance = decimal.New(1, -2) // 0.01

// Party is a named entity on an invoice (vendor or participant).
type Party struct {
	Name string `json:"name"`
}

// LineItem is one billed service line. It is owned exclusively by its parent
// Invoice and immutable after construction.
type LineItem struct {
	ServiceDate        string          `json:"serviceDate"`
	ServiceCode        string          `json:"serviceCode"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	LineTotal          decimal.Decimal `json:"lineTotal"`
	ServiceDescription string          `json:"serviceDescription"`
}

// LineItemInput carries the raw extracted values for one table row. Numeric
// fields are strings as captured from the document; commas and currency
// symbols are stripped during construction.
type LineItemInput struct {
	ServiceDate        string
	ServiceCode        string
	Quantity           string
	UnitPrice          string
	LineTotal          string
	ServiceDescription string
}

// NewLineItem normalizes and validates one extracted row. The pipeline runs
// dates, then currency fields, then range and non-emptiness checks, then the
// line arithmetic over the canonical values.
func NewLineItem(in LineItemInput) (*LineItem, error) {
	date, err := NormalizeDate(in.ServiceDate)
	if err != nil {
		return nil, fieldError("line item", "serviceDate", err)
	}

	qty, err := NormalizeQuantity(in.Quantity)
	if err != nil {
		return nil, fieldError("line item", "quantity", err)
	}
	unit, err := NormalizeCurrency(in.UnitPrice)
	if err != nil {
		return nil, fieldError("line item", "unitPrice", err)
	}
	total, err := NormalizeCurrency(in.LineTotal)
	if err != nil {
		return nil, fieldError("line item", "lineTotal", err)
	}

	if !qty.IsPositive() {
		return nil, &ValidationError{Entity: "line item", Field: "quantity", Message: fmt.Sprintf("must be positive, got %s", qty)}
	}
	if unit.IsNegative() {
		return nil, &ValidationError{Entity: "line item", Field: "unitPrice", Message: fmt.Sprintf("must not be negative, got %s", unit)}
	}
	if total.IsNegative() {
		return nil, &ValidationError{Entity: "line item", Field: "lineTotal", Message: fmt.Sprintf("must not be negative, got %s", total)}
	}

	code := NormalizeText(in.ServiceCode)
	if code == "" {
		return nil, &ValidationError{Entity: "line item", Field: "serviceCode", Message: "must not be empty"}
	}
	desc := NormalizeText(in.ServiceDescription)
	if desc == "" {
		return nil, &ValidationError{Entity: "line item", Field: "serviceDescription", Message: "must not be empty"}
	}

	expected := qty.Mul(unit).Round(2)
	if total.Sub(expected).Abs().GreaterThan(amountTolerance) {
		return nil, &ValidationError{
			Entity:  "line item",
			Field:   "lineTotal",
			Message: fmt.Sprintf("expected %s (quantity %s x unit price %s), got %s", expected, qty, unit, total),
		}
	}

	return &LineItem{
		ServiceDate:        date,
		ServiceCode:        code,
		Quantity:           qty,
		UnitPrice:          unit,
		LineTotal:          total,
		ServiceDescription: desc,
	}, nil
}

// Invoice is one validated billing document.
type Invoice struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   string          `json:"invoiceDate"`
	DueDate       string          `json:"dueDate,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Vendor        Party           `json:"vendor"`
	Participant   Party           `json:"participant"`
	LineItems     []LineItem      `json:"lineItems"`
}

// InvoiceInput carries raw header values and already-constructed line items.
type InvoiceInput struct {
	InvoiceNumber   string
	InvoiceDate     string
	DueDate         string
	TotalAmount     string
	VendorName      string
	ParticipantName string
	LineItems       []LineItem
}

// NewInvoice normalizes and validates a whole document. When line items are
// present their totals must sum to the invoice total within tolerance.
func NewInvoice(in InvoiceInput) (*Invoice, error) {
	date, err := NormalizeDate(in.InvoiceDate)
	if err != nil {
		return nil, fieldError("invoice", "invoiceDate", err)
	}

	due := ""
	if strings.TrimSpace(in.DueDate) != "" {
		due, err = NormalizeDate(in.DueDate)
		if err != nil {
			return nil, fieldError("invoice", "dueDate", err)
		}
	}

	total, err := NormalizeCurrency(in.TotalAmount)
	if err != nil {
		return nil, fieldError("invoice", "totalAmount", err)
	}
	if total.IsNegative() {
		return nil, &ValidationError{Entity: "invoice", Field: "totalAmount", Message: fmt.Sprintf("must not be negative, got %s", total)}
	}

	number := NormalizeText(in.InvoiceNumber)
	if number == "" {
		return nil, &ValidationError{Entity: "invoice", Field: "invoiceNumber", Message: "must not be empty"}
	}
	vendor := NormalizeText(in.VendorName)
	if vendor == "" {
		return nil, &ValidationError{Entity: "invoice", Field: "vendor.name", Message: "must not be empty"}
	}
	participant := NormalizeText(in.ParticipantName)
	if participant == "" {
		return nil, &ValidationError{Entity: "invoice", Field: "participant.name", Message: "must not be empty"}
	}

	if len(in.LineItems) > 0 {
		sum := decimal.Zero
		for _, item := range in.LineItems {
			sum = sum.Add(item.LineTotal)
		}
		if total.Sub(sum).Abs().GreaterThan(amountTolerance) {
			return nil, &ValidationError{
				Entity:  "invoice",
				Field:   "totalAmount",
				Message: fmt.Sprintf("line items sum to %s, got %s", sum, total),
			}
		}
	}

	// Copy so the invoice exclusively owns its items.
	items := make([]LineItem, len(in.LineItems))
	copy(items, in.LineItems)

	return &Invoice{
		InvoiceNumber: number,
		InvoiceDate:   date,
		DueDate:       due,
		TotalAmount:   total,
		Vendor:        Party{Name: vendor},
		Participant:   Party{Name: participant},
		LineItems:     items,
	}, nil
}
