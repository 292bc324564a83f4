package report

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput aborts the whole run for an upload.
	ErrMalformedInput = errors.New("malformed input")
	// ErrHeaderNotFound is returned when no audit line carries both header markers.
	ErrHeaderNotFound = fmt.Errorf("%w: audit header not found", ErrMalformedInput)
)

func malformed(op string, format string, args ...any) error {
	return errorf(op, ErrMalformedInput, format, args...)
}

func errorf(op string, sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, sentinel, fmt.Sprintf(format, args...))
}

// Notice is a non-fatal message attached to a report when one view could not
// be computed.
type Notice struct {
	View    string `json:"view"`
	Message string `json:"message"`
}
