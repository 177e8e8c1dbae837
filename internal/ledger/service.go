package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ndis-tools/invoice-ledger/internal/extraction"
	"github.com/ndis-tools/invoice-ledger/internal/invoice"
	"github.com/ndis-tools/invoice-ledger/internal/parsing"
)

// ErrDuplicateInvoice marks a document whose invoice number is already in the
// archive. The ledger is append-only, so duplicates are refused rather than
// written twice.
var ErrDuplicateInvoice = errors.New("invoice already processed")

// Service runs the pipeline: extract text, parse, refuse duplicates, append
// to the ledger, archive.
type Service struct {
	extractor extraction.Extractor
	parser    *parsing.Parser
	ledger    Ledger
	db        DB
}

// NewService creates a new Service
func NewService(extractor extraction.Extractor, parser *parsing.Parser, ledger Ledger, db DB) *Service {
	return &Service{
		extractor: extractor,
		parser:    parser,
		ledger:    ledger,
		db:        db,
	}
}

// ProcessDocument runs one document through the pipeline. The archive is
// written only after the ledger append succeeds, so a failed append is
// retried on the next run.
func (s *Service) ProcessDocument(ctx context.Context, name string, data []byte, contentType string) (*invoice.Invoice, error) {
	text, err := s.extractor.ExtractText(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", name, err)
	}

	inv, err := s.parser.ParseInvoice(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	seen, err := s.db.HasInvoice(inv.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("checking archive: %w", err)
	}
	if seen {
		return nil, fmt.Errorf("%s: %w", inv.InvoiceNumber, ErrDuplicateInvoice)
	}

	if err := s.ledger.StoreInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("storing invoice in ledger: %w", err)
	}
	if err := s.db.SaveInvoice(inv); err != nil {
		return nil, fmt.Errorf("archiving invoice: %w", err)
	}

	slog.Info("processed invoice",
		"document", name,
		"number", inv.InvoiceNumber,
		"vendor", inv.Vendor.Name,
		"total", inv.TotalAmount.StringFixed(2),
		"line_items", len(inv.LineItems),
	)
	return inv, nil
}

// ProcessFile reads one document from disk and processes it.
func (s *Service) ProcessFile(ctx context.Context, path string) (*invoice.Invoice, error) {
	contentType := contentTypeFor(path)
	if contentType == "" {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return s.ProcessDocument(ctx, filepath.Base(path), data, contentType)
}

// ProcessFolder processes every supported file in a directory. Failures are
// per document: they are logged and the remaining files still run. Returns
// the invoices that were processed.
func (s *Service) ProcessFolder(ctx context.Context, dir string) ([]*invoice.Invoice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder: %w", err)
	}

	processed := make([]*invoice.Invoice, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if contentTypeFor(path) == "" {
			continue
		}

		inv, err := s.ProcessFile(ctx, path)
		if errors.Is(err, ErrDuplicateInvoice) {
			slog.Warn("skipping duplicate invoice", "file", path)
			continue
		}
		if err != nil {
			slog.Error("failed to process invoice", "file", path, "error", err)
			continue
		}
		processed = append(processed, inv)
	}
	return processed, nil
}

// contentTypeFor maps a file extension to the content type handed to the
// extractor. Unknown extensions return empty and are skipped.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".heic", ".heif":
		return "image/heic"
	default:
		return ""
	}
}
