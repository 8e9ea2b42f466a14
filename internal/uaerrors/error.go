package uaerrors

import "fmt"

// DiagnosticInfo carries optional per-request diagnostics, passed through
// verbatim
type DiagnosticInfo struct {
	SymbolicID      int32
	NamespaceURI    int32
	LocalizedText   int32
	Locale          int32
	AdditionalInfo  string
	InnerDiagnostic *DiagnosticInfo
}

// Error wraps a StatusCode so it can flow through the standard errors.Is/As
// machinery while still exposing the wire-level code to callers that need
// to pack it into a per-item result vector.
type Error struct {
	Code       StatusCode
	Diagnostic *DiagnosticInfo
	msg        string
}

// New builds an Error from a StatusCode with an optional descriptive message.
func New(code StatusCode, msg string) *Error {
	return &Error{Code: code, msg: msg}
}

// Newf builds an Error with a formatted message.
func Newf(code StatusCode, format string, args ...any) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

// Is allows errors.Is(err, uaerrors.BadNodeIdUnknown) style checks by
// comparing against a bare StatusCode wrapped in an *Error.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// Sentinel wraps a bare StatusCode so it can be used as an errors.Is target,
// e.g. errors.Is(err, uaerrors.Sentinel(uaerrors.BadTimeout)).
func Sentinel(code StatusCode) *Error { return &Error{Code: code} }

// CodeOf extracts the StatusCode from any error produced by this package,
// defaulting to BadInternalError for foreign errors.
func CodeOf(err error) StatusCode {
	if err == nil {
		return Good
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return BadInternalError
}
