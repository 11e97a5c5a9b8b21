// Package pngerr defines the error kinds shared by the decoding pipeline.
//
// Every stage wraps one of these sentinels with fmt.Errorf("%w: ...") so
// callers can classify a failure with errors.Is regardless of which stage
// produced it.
package pngerr

import "errors"

// Errors
var (
	ErrOutOfBounds        = &Error{"read past end of buffer"}
	ErrMalformedRecord    = &Error{"malformed record"}
	ErrMissingHeader      = &Error{"missing header record"}
	ErrTruncatedImageData = &Error{"truncated image data"}
	ErrCorruptStream      = &Error{"corrupt compressed stream"}
	ErrBadSignature       = &Error{"not a PNG stream"}
	ErrUnsupported        = &Error{"unsupported image format"}
)

// Error represents a decoding error kind
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var labels = []struct {
	err   *Error
	label string
}{
	{ErrOutOfBounds, "out_of_bounds"},
	{ErrMalformedRecord, "malformed_record"},
	{ErrMissingHeader, "missing_header"},
	{ErrTruncatedImageData, "truncated_image_data"},
	{ErrCorruptStream, "corrupt_stream"},
	{ErrBadSignature, "bad_signature"},
	{ErrUnsupported, "unsupported"},
}

// Label returns a short snake_case name for the kind err wraps, or "" when
// err is not a decoding error. Used as a metrics label.
func Label(err error) string {
	for _, l := range labels {
		if errors.Is(err, l.err) {
			return l.label
		}
	}
	return ""
}
