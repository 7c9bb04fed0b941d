// Package engerr defines the engine-wide error taxonomy: a small set of
// machine-readable kinds attached to human-readable messages, in the same
// wrap-and-tag idiom this codebase already uses for its storage errors.
package engerr

import "fmt"

// Kind is one of the error categories the engine's public operations may
// report. Kind values are stable and intended for errors.Is-style matching.
type Kind string

const (
	KindInput          Kind = "input_error"
	KindNotFound       Kind = "not_found"
	KindAmbiguous      Kind = "ambiguous_target"
	KindIO             Kind = "io_error"
	KindNotInitialized Kind = "not_initialized"
	KindCancelled      Kind = "cancelled"
)

// IndexError is the engine's error type: a Kind tag plus a human message and
// an optional wrapped cause.
type IndexError struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *IndexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *IndexError) Unwrap() error { return e.Err }

// Is allows errors.Is(err, engerr.KindNotFound) style matching against a
// bare Kind sentinel — see the kind-sentinel helpers below.
func (e *IndexError) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && e.Kind == k.Kind
}

type kindSentinel struct{ Kind Kind }

func (kindSentinel) Error() string { return "" }

// Sentinel returns an error value usable with errors.Is to test an
// IndexError's Kind, e.g. errors.Is(err, engerr.Sentinel(engerr.KindNotFound)).
func Sentinel(k Kind) error { return kindSentinel{Kind: k} }

func New(kind Kind, op, msg string) *IndexError {
	return &IndexError{Kind: kind, Op: op, Msg: msg}
}

func Wrap(kind Kind, op, msg string, err error) *IndexError {
	return &IndexError{Kind: kind, Op: op, Msg: msg, Err: err}
}

func NotFound(op, msg string) *IndexError  { return New(KindNotFound, op, msg) }
func Input(op, msg string) *IndexError     { return New(KindInput, op, msg) }
func NotInit(op, msg string) *IndexError   { return New(KindNotInitialized, op, msg) }
func Cancelled(op, msg string) *IndexError { return New(KindCancelled, op, msg) }

func IO(op, msg string, err error) *IndexError {
	return Wrap(KindIO, op, msg, err)
}

// Ambiguous reports an AmbiguousTarget error listing the candidates found.
func Ambiguous(op string, candidates []string) *IndexError {
	return &IndexError{
		Kind: KindAmbiguous,
		Op:   op,
		Msg:  fmt.Sprintf("target is ambiguous, %d candidates: %v", len(candidates), candidates),
	}
}
