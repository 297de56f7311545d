// Package sigerr defines the error taxonomy shared by signature editing,
// binding and adaptation.
//
// Errors are categorized by Kind (what went wrong) and Op (which operation
// reported it). Use errors.Is against the package sentinels to classify:
//
//	if errors.Is(err, sigerr.ErrLookup) { ... }
//
// or against an *Error with both Op and Kind set to match a single operation.
package sigerr

import (
	"fmt"
	"strings"
)

// Kind categorizes the error
type Kind string

const (
	KindStructural      Kind = "structural"       // invariant violation
	KindLookup          Kind = "lookup"           // parameter or index not found, or rejected by kind
	KindBindingConflict Kind = "binding_conflict" // value or parameter linked twice
	KindPacking         Kind = "packing"          // invalid pack request
)

// Op names the operation that failed
type Op string

const (
	OpValidate  Op = "validate"
	OpLookup    Op = "get_param"
	OpRemove    Op = "remove"
	OpReorder   Op = "reorder"
	OpPack      Op = "pack"
	OpBind      Op = "bind"
	OpSoftBind  Op = "soft_bind"
	OpTransform Op = "transform"
	OpCall      Op = "call"
)

// Sentinels for errors.Is classification by Kind.
var (
	ErrStructural      = &Error{Kind: KindStructural}
	ErrLookup          = &Error{Kind: KindLookup}
	ErrBindingConflict = &Error{Kind: KindBindingConflict}
	ErrPacking         = &Error{Kind: KindPacking}
)

// Error is the structured error returned by every signature operation
type Error struct {
	Value  any
	Cause  error
	Op     Op
	Kind   Kind
	Param  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Op))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Param != "" {
		b.WriteString(" at ")
		b.WriteString(e.Param)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Kind must match; Op only
// has to match when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(op Op, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Op:   op,
			Kind: kind,
		},
	}
}

// Param sets the parameter the error refers to
func (b *Builder) Param(name string) *Builder {
	b.err.Param = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Structural creates an invariant violation error
func Structural(op Op, param string, detail string, args ...any) *Error {
	return New(op, KindStructural).Param(param).Detail(detail, args...).Build()
}

// NotFound creates a lookup error for a key that resolves to no parameter
func NotFound(op Op, key any) *Error {
	return &Error{
		Op:     op,
		Kind:   KindLookup,
		Value:  key,
		Detail: fmt.Sprintf("could not find parameter %s", quoteKey(key)),
	}
}

// Conflict creates a binding conflict error
func Conflict(op Op, param string, detail string, args ...any) *Error {
	return New(op, KindBindingConflict).Param(param).Detail(detail, args...).Build()
}

// Packing creates an invalid pack request error
func Packing(detail string, args ...any) *Error {
	return New(OpPack, KindPacking).Detail(detail, args...).Build()
}

// Wrap re-labels an error under a different operation and kind, keeping it as the cause.
func Wrap(op Op, kind Kind, cause error, detail string, args ...any) *Error {
	return New(op, kind).Cause(cause).Detail(detail, args...).Build()
}

func quoteKey(key any) string {
	if s, ok := key.(string); ok {
		return fmt.Sprintf("'%s'", s)
	}
	if s, ok := key.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(key)
}
