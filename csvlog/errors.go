package csvlog

import "errors"

// Sentinel errors for logger failure modes. Wrap with fmt.Errorf("%w") and
// test with errors.Is.
var (
	// ErrInvalidRow indicates a malformed row passed to Log (empty, or
	// containing duplicate keys). Nothing is written when it is returned.
	ErrInvalidRow = errors.New("invalid row")

	// ErrCorruptLog indicates an existing file could not be parsed as
	// delimited text with a consistent column count. The file is left
	// untouched.
	ErrCorruptLog = errors.New("corrupt log file")
)
