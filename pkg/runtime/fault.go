package runtime

import (
	"errors"
	"fmt"

	"moopl/interpreter-go/pkg/ast"
)

// FaultKind classifies fatal runtime errors.
type FaultKind int

const (
	DivisionByZero FaultKind = iota + 1
	NullReference
	NegativeArrayLength
	IndexOutOfRange
	UnresolvedDispatch
	UnsupportedOperator

	// Internal consistency faults; unreachable for a correctly checked and
	// allocated program.
	InvalidAddress
	FrameOffset
	StackOverflow
)

func (k FaultKind) String() string {
	switch k {
	case DivisionByZero:
		return "DivisionByZero"
	case NullReference:
		return "NullReference"
	case NegativeArrayLength:
		return "NegativeArrayLength"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case UnresolvedDispatch:
		return "UnresolvedDispatch"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	case InvalidAddress:
		return "InvalidAddress"
	case FrameOffset:
		return "FrameOffset"
	case StackOverflow:
		return "StackOverflow"
	default:
		return fmt.Sprintf("Fault(%d)", int(k))
	}
}

// Internal reports whether the kind signals a gap in upstream checking
// rather than a user program error.
func (k FaultKind) Internal() bool {
	switch k {
	case UnresolvedDispatch, UnsupportedOperator, InvalidAddress, FrameOffset:
		return true
	}
	return false
}

// Fault is a fatal runtime error. Faults are never recovered; they abort the
// run once the call stack has unwound.
type Fault struct {
	Kind    FaultKind
	Message string
	Span    ast.Span
	// Stack holds the call-stack trace captured where the fault surfaced,
	// innermost frame first.
	Stack []string
}

func (f *Fault) Error() string {
	if f.Span.IsZero() {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("%s: %s (%d:%d)", f.Kind, f.Message, f.Span.Line, f.Span.Column)
}

// Faultf builds a fault without location.
func Faultf(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At attaches a source location if the fault has none yet.
func At(err error, node ast.Node) error {
	var f *Fault
	if node == nil || !errors.As(err, &f) || !f.Span.IsZero() {
		return err
	}
	f.Span = node.NodeSpan()
	return err
}

// WithStack records the call-stack trace on a fault that has none yet.
func WithStack(err error, stack *CallStack) error {
	var f *Fault
	if stack == nil || !errors.As(err, &f) || f.Stack != nil {
		return err
	}
	f.Stack = stack.Trace()
	return err
}

// KindOf extracts the fault kind from an error chain, or 0.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}
