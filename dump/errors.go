package dump

import "errors"

// Sentinel errors. ErrMissingField and ErrMissingNewline survive from the
// teacher's lib/constants.go verbatim; the rest implement the taxonomy in
// spec section 7.
var (
	ErrMissingField   = errors.New("missing required field")
	ErrMissingNewline = errors.New("missing newline")

	ErrMalformedHeader          = errors.New("malformed header")
	ErrTruncatedBody            = errors.New("truncated body")
	ErrUnexpectedRecord         = errors.New("unexpected record")
	ErrUnsupportedFormatVersion = errors.New("unsupported dump format version")

	ErrMissingUntangleSource = errors.New("missing untangle source")
	ErrProbe                 = errors.New("repository probe error")
	ErrProbeNotFound         = errors.New("repository probe: not found")

	ErrInvalidCopyfromRev = errors.New("copyfrom references a revision that no longer exists")
	ErrWrite              = errors.New("output write error")
	ErrConfig             = errors.New("invalid configuration")
)
