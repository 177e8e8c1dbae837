package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"google.golang.org/api/sheets/v4"

	"github.com/ndis-tools/invoice-ledger/internal/extraction"
	"github.com/ndis-tools/invoice-ledger/internal/ledger"
	"github.com/ndis-tools/invoice-ledger/internal/parsing"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("invoice-ledger")
	var (
		patternsPath  = fs.StringLong("patterns", "", "Pattern registry JSON file (default: built-in registry)")
		dbPath        = fs.StringLong("db", "invoice-ledger.db", "Archive database file path")
		spreadsheetID = fs.StringLong("spreadsheet-id", "", "Google Sheets spreadsheet ID (empty: print parsed invoices as JSON)")
		summarySheet  = fs.StringLong("summary-sheet", "Invoices", "Sheet receiving one summary row per invoice")
		detailSheet   = fs.StringLong("detail-sheet", "LineItems", "Sheet receiving one row per line item")
		credentials   = fs.StringLong("credentials", "", "Service account key file for Google Sheets")
		clientSecret  = fs.StringLong("client-secret", "", "OAuth client secret file for Google Sheets")
		tokenFile     = fs.StringLong("token", "token.json", "OAuth token file (used with --client-secret)")
		extractorType = fs.StringLong("extractor", "fitz", "Text extractor: 'fitz' (PDF text layer) or 'gemini' (OCR)")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_LEDGER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	args := fs.GetArgs()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: expected at least one invoice file or folder")
		os.Exit(1)
	}

	ctx := context.Background()

	// Load the pattern registry
	var registry *parsing.Registry
	var err error
	if *patternsPath != "" {
		slog.Info("Loading pattern registry...", "path", *patternsPath)
		registry, err = parsing.LoadRegistry(*patternsPath)
	} else {
		registry, err = parsing.DefaultRegistry()
	}
	if err != nil {
		slog.Error("Failed to load pattern registry", "error", err)
		os.Exit(1)
	}
	parser := parsing.NewParser(registry)

	// Initialize extractor based on type
	var extractor extraction.Extractor
	switch *extractorType {
	case "fitz":
		extractor = extraction.NewFitz()
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini extractor...", "model", *geminiModel)
		extractor, err = extraction.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid extractor type", "type", *extractorType, "valid", "fitz or gemini")
		os.Exit(1)
	}
	defer extractor.Close()

	// Initialize archive database
	slog.Info("Initializing archive...", "path", *dbPath)
	db, err := ledger.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize archive", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize ledger destination
	var led ledger.Ledger
	if *spreadsheetID == "" {
		slog.Info("No spreadsheet configured, writing parsed invoices to stdout")
		led = ledger.NewJSONLedger(os.Stdout)
	} else {
		var svc *sheets.Service
		switch {
		case *credentials != "":
			svc, err = ledger.NewSheetsService(ctx, *credentials)
		case *clientSecret != "":
			svc, err = ledger.NewSheetsServiceFromOAuth(ctx, *clientSecret, *tokenFile)
		default:
			slog.Error("Sheets access requires --credentials or --client-secret")
			os.Exit(1)
		}
		if err != nil {
			slog.Error("Failed to initialize Sheets client", "error", err)
			os.Exit(1)
		}
		led, err = ledger.NewSheetsLedger(svc, *spreadsheetID, *summarySheet, *detailSheet)
		if err != nil {
			slog.Error("Failed to initialize Sheets ledger", "error", err)
			os.Exit(1)
		}
	}

	service := ledger.NewService(extractor, parser, led, db)

	processed, failed := 0, 0
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			slog.Error("Cannot read path", "path", arg, "error", err)
			failed++
			continue
		}

		if info.IsDir() {
			invoices, err := service.ProcessFolder(ctx, arg)
			if err != nil {
				slog.Error("Failed to process folder", "path", arg, "error", err)
				failed++
				continue
			}
			processed += len(invoices)
			continue
		}

		if _, err := service.ProcessFile(ctx, arg); err != nil {
			slog.Error("Failed to process invoice", "path", arg, "error", err)
			failed++
			continue
		}
		processed++
	}

	slog.Info("Done", "processed", processed, "failed", failed)
	if processed == 0 && failed > 0 {
		os.Exit(1)
	}
}
