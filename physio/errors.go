package physio

import "errors"

// Every parse or assembly failure wraps one of these sentinels (or an
// os error for a missing file) and aborts the whole read; there is no
// partial result. Match with errors.Is.
var (
	ErrVersionMismatch  = errors.New("log format version mismatch")
	ErrDataTypeMismatch = errors.New("log data type mismatch")
	ErrMisplacedField   = errors.New("header field not valid for this file kind")
	ErrMissingHeader    = errors.New("required header field missing")
	ErrBadHeaderValue   = errors.New("invalid header value")
	ErrMissingUUID      = errors.New("session UUID missing")
	ErrMalformedRow     = errors.New("malformed data row")
	ErrDuplicateRecord  = errors.New("duplicate acquisition record")
	ErrInvalidChannel   = errors.New("unrecognized channel label")
	ErrUUIDMismatch     = errors.New("session UUID mismatch between files")
	ErrInvalidTimeRange = errors.New("invalid scan time range")
)
