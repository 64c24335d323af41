package form

import "github.com/m-mizutani/goerr/v2"

// User input failures. Validation reports them per field and recovers
// locally; they never abort a run.
var (
	ErrMissingRequiredValue  = goerr.New("required value is missing")
	ErrPatternMismatch       = goerr.New("value does not match pattern")
	ErrRequiredFieldsMissing = goerr.New("required fields missing")
)

// Schema and programming errors. These are returned to the caller instead of
// being coerced into empty values.
var (
	ErrUnsupportedFieldKind    = goerr.New("unsupported field kind")
	ErrInvalidWidget           = goerr.New("invalid widget")
	ErrInvalidPattern          = goerr.New("invalid validation pattern")
	ErrMultipleSignatures      = goerr.New("form declares more than one signature")
	ErrSignatureNotExtractable = goerr.New("signature value is stamped at payload assembly")
)

// Context keys attached to wrapped errors.
const (
	KeyField   = "key"
	KeyKind    = "kind"
	KeyPattern = "pattern"
	KeyOption  = "option"
	KeyForm    = "form_id"
	KeyMissing = "missing"
	KeyOther   = "other_id"
)
