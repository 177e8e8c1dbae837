package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/ndis-tools/invoice-ledger/internal/invoice"
)

// SheetsLedger appends invoices to a Google Sheets spreadsheet: one row per
// invoice on the summary sheet and one row per line item on the detail sheet.
type SheetsLedger struct {
	svc           *sheets.Service
	spreadsheetID string
	summarySheet  string
	detailSheet   string
}

// NewSheetsLedger creates a SheetsLedger over an authenticated Sheets service.
func NewSheetsLedger(svc *sheets.Service, spreadsheetID, summarySheet, detailSheet string) (*SheetsLedger, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if summarySheet == "" || detailSheet == "" {
		return nil, fmt.Errorf("summary and detail sheet names are required")
	}
	return &SheetsLedger{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		summarySheet:  summarySheet,
		detailSheet:   detailSheet,
	}, nil
}

// StoreInvoice appends the summary row and then the detail rows. Appends are
// not transactional across sheets; a failed detail append leaves the summary
// row in place and surfaces the error to the caller.
func (l *SheetsLedger) StoreInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if err := l.append(ctx, l.summarySheet, [][]interface{}{summaryRow(inv)}); err != nil {
		return fmt.Errorf("appending summary row: %w", err)
	}
	if err := l.append(ctx, l.detailSheet, detailRows(inv)); err != nil {
		return fmt.Errorf("appending detail rows: %w", err)
	}
	return nil
}

// append writes rows to one sheet, retrying rate-limit and server errors with
// exponential backoff.
func (l *SheetsLedger) append(ctx context.Context, sheet string, rows [][]interface{}) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := l.svc.Spreadsheets.Values.
			Append(l.spreadsheetID, sheet+"!A1", &sheets.ValueRange{Values: rows}).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err == nil {
			return nil
		}

		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500) {
			slog.Warn("retrying sheets append", "sheet", sheet, "code", apiErr.Code)
			return retry.RetryableError(err)
		}
		return err
	})
}
