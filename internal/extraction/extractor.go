// Package extraction produces raw text from invoice source documents. The
// parsing core only ever sees the text; everything here is replaceable I/O.
package extraction

import "context"

// Extractor turns one source document into raw invoice text.
type Extractor interface {
	// ExtractText returns the text content of a document
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
	// Close closes the extractor and releases resources
	Close() error
}
