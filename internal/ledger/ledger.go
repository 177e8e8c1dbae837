// Package ledger appends validated invoices to a spreadsheet-backed ledger
// and keeps a local archive of everything processed.
package ledger

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/ndis-tools/invoice-ledger/internal/invoice"
)

// Ledger is the downstream destination for validated invoices.
type Ledger interface {
	// StoreInvoice appends one invoice to the ledger
	StoreInvoice(ctx context.Context, inv *invoice.Invoice) error
}

// summaryRow flattens an invoice into its one-row summary form.
func summaryRow(inv *invoice.Invoice) []interface{} {
	return []interface{}{
		inv.InvoiceNumber,
		inv.InvoiceDate,
		inv.DueDate,
		inv.TotalAmount.StringFixed(2),
		inv.Vendor.Name,
		inv.Participant.Name,
		len(inv.LineItems),
	}
}

// detailRows flattens an invoice into one row per line item, or a single
// placeholder row when the invoice has none.
func detailRows(inv *invoice.Invoice) [][]interface{} {
	if len(inv.LineItems) == 0 {
		return [][]interface{}{{
			inv.InvoiceNumber,
			inv.InvoiceDate,
			"",
			"No line items",
			"",
			"",
			inv.TotalAmount.StringFixed(2),
		}}
	}

	rows := make([][]interface{}, 0, len(inv.LineItems))
	for _, item := range inv.LineItems {
		rows = append(rows, []interface{}{
			inv.InvoiceNumber,
			item.ServiceDate,
			item.ServiceCode,
			item.ServiceDescription,
			item.Quantity.String(),
			item.UnitPrice.StringFixed(2),
			item.LineTotal.StringFixed(2),
		})
	}
	return rows
}

// JSONLedger writes each invoice as an indented JSON document. It backs the
// CLI dry-run mode where no spreadsheet is configured.
type JSONLedger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLedger creates a JSONLedger writing to w.
func NewJSONLedger(w io.Writer) *JSONLedger {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONLedger{enc: enc}
}

// StoreInvoice writes the invoice as JSON
func (l *JSONLedger) StoreInvoice(_ context.Context, inv *invoice.Invoice) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(inv)
}
