package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Fitz extracts embedded text from PDF documents. It only works on PDFs that
// carry a text layer; scanned PDFs and photos need the Gemini extractor.
type Fitz struct{}

// NewFitz creates a new Fitz extractor
func NewFitz() *Fitz {
	return &Fitz{}
}

// ExtractText returns the text of every page joined by newlines. Plain text
// input passes through unchanged.
func (f *Fitz) ExtractText(_ context.Context, data []byte, contentType string) (string, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(mimeType, "text/") {
		return string(data), nil
	}
	if mimeType != "application/pdf" {
		return "", fmt.Errorf("unsupported content type for text extraction: %s", contentType)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var text strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		pageText, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("extracting text from page %d: %w", page+1, err)
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	return text.String(), nil
}

// Close releases resources (no-op for Fitz)
func (f *Fitz) Close() error {
	return nil
}
