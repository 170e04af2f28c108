// Package errs defines the error taxonomy shared by the WAL, cache, and
// iterator packages: NotFound, Invalid, Conflict, Io, Partial, Timeout, and
// Fatal, matched with errors.Is the way frostdb exposes its package-level
// Err* sentinels.
package errs

import "fmt"

type Kind int

const (
	KindNotFound Kind = iota
	KindInvalid
	KindConflict
	KindIo
	KindPartial
	KindTimeout
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	case KindIo:
		return "io"
	case KindPartial:
		return "partial"
	case KindTimeout:
		return "timeout"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a taxonomy-tagged error. Callers should match kinds with
// errors.Is against the package-level sentinels below, not by comparing
// *Error values directly.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is one of the Kind sentinels declared below.
func (e *Error) Is(target error) bool {
	s, ok := target.(*sentinel)
	if !ok {
		return false
	}
	return e.kind == s.kind
}

type sentinel struct{ kind Kind }

func (s *sentinel) Error() string { return s.kind.String() }

var (
	NotFound = &sentinel{KindNotFound}
	Invalid  = &sentinel{KindInvalid}
	Conflict = &sentinel{KindConflict}
	Io       = &sentinel{KindIo}
	Partial  = &sentinel{KindPartial}
	Timeout  = &sentinel{KindTimeout}
	Fatal    = &sentinel{KindFatal}
)

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

func NotFoundf(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Invalidf(format string, args ...any) *Error {
	return New(KindInvalid, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func IoWrap(msg string, err error) *Error {
	return Wrap(KindIo, msg, err)
}

func Fatalf(format string, args ...any) *Error {
	return New(KindFatal, fmt.Sprintf(format, args...))
}
