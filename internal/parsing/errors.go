package parsing

import "fmt"

// ParseError reports a document-level failure: required header fields could
// not be extracted, or invoice assembly tripped a validation error. It is
// fatal for the document being parsed; batch callers catch it per document
// and continue.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
