// Package fatal tags the errors that abort a tiling run with the class of
// failure that produced them.
package fatal

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInput Kind = iota + 1
	KindPrecondition
	KindStructure
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindPrecondition:
		return "precondition"
	case KindStructure:
		return "structure"
	case KindIO:
		return "io"
	}
	return "unknown"
}

// Sentinels usable with errors.Is.
var (
	ErrInput        = &Error{Kind: KindInput}
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrStructure    = &Error{Kind: KindStructure}
	ErrIO           = &Error{Kind: KindIO}
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, fatal.ErrIO)
// holds for every io failure regardless of operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op) && t.Err == nil
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Inputf(op, format string, a ...interface{}) *Error {
	return New(KindInput, op, fmt.Errorf(format, a...))
}

func Preconditionf(op, format string, a ...interface{}) *Error {
	return New(KindPrecondition, op, fmt.Errorf(format, a...))
}

func Structuref(op, format string, a ...interface{}) *Error {
	return New(KindStructure, op, fmt.Errorf(format, a...))
}

func IO(op string, err error) *Error {
	return New(KindIO, op, err)
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Recover turns a panic carrying a *Error into a returned error. Any other
// panic value is re-raised. Use as: defer fatal.Recover(&err).
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*err = e
		return
	}
	panic(r)
}
