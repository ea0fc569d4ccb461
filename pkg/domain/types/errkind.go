package types

// ErrorKind classifies failures surfaced by tools and pipeline stages.
// Provider and timeout failures are absorbed into failed results; only
// configuration and caller-contract violations may escape to the caller.
type ErrorKind string

const (
	ErrKindNone       ErrorKind = ""
	ErrKindValidation ErrorKind = "validation"
	ErrKindProvider   ErrorKind = "provider"
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindPermission ErrorKind = "permission"
	ErrKindNotFound   ErrorKind = "not_found"
	ErrKindSafety     ErrorKind = "safety"
)

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	return string(k)
}
