package document

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned when a document decodes to nothing.
var ErrEmptyDocument = errors.New("document is empty")

// UnsupportedFormatError means no converter accepts the input.
type UnsupportedFormatError struct {
	MIMEType  string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension != "" {
		return fmt.Sprintf("unsupported format: %s (%s)", e.MIMEType, e.Extension)
	}
	return fmt.Sprintf("unsupported format: %s", e.MIMEType)
}

// HTTPStatusError reports a non-2xx response from a fetched URL.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
}

// FetchError wraps a network-level failure while fetching a URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps a converter failure on syntactically broken input.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
