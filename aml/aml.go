// Package aml declares the boundary between the acpi package and the AML
// (ACPI Machine Language) bytecode interpreter. Parsing DSDT/SSDT bytes,
// maintaining the object namespace, and executing control methods are all
// out of scope here (spec.md §1); this package only names the contract the
// acpi package needs against that interpreter. aml/amltest supplies a fake
// Context for tests.
package aml

import (
	"errors"
	"fmt"
)

// ValueKind identifies the dynamic type carried by a Value.
type ValueKind uint8

const (
	KindInteger ValueKind = iota
	KindPackage
	KindString
)

// Value is an AML-typed value: either an integer, a package (ordered list
// of further Values), or a string. Named objects such as \_S5_ evaluate to
// a Package of two or more integers (spec.md §3, "Sleep State").
type Value struct {
	Kind    ValueKind
	Integer uint64
	Package []Value
	String  string
}

// AsInteger returns v's integer value, failing if v is not an integer.
func (v Value) AsInteger() (uint64, error) {
	if v.Kind != KindInteger {
		return 0, fmt.Errorf("aml: value is not an integer (kind %d)", v.Kind)
	}
	return v.Integer, nil
}

// Args is the argument list passed to InvokeMethod, in AML's native
// integer-only calling convention (every control method this module invokes
// — \_PTS, \_SI._SST, \_PIC — takes a single integer argument).
type Args []Value

// IntArgs builds an Args list of integer arguments.
func IntArgs(values ...uint64) Args {
	args := make(Args, len(values))
	for i, v := range values {
		args[i] = Value{Kind: KindInteger, Integer: v}
	}
	return args
}

// NotFoundError reports that a named object or method does not exist in the
// AML namespace. Several ACPI methods (\_PTS, \_SI._SST, \_PIC) are
// optional; callers use IsNotFound to distinguish "absent, ignore it" from
// every other AML failure, which is fatal (spec.md §7).
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("aml: %s does not exist", e.Path)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// Context is the interpreter boundary the acpi package depends on: loading
// a table's bytecode, looking up named objects, and invoking control
// methods by path.
type Context interface {
	// ParseTable loads AML bytecode (a DSDT or SSDT body) into the
	// namespace.
	ParseTable(bytecode []byte) error

	// InitializeObjects runs the interpreter's first-pass object
	// initialization, after all tables have been parsed.
	InitializeObjects() error

	// Lookup evaluates the named object at path (e.g. "\\_S5_") and
	// returns its Value. Returns a *NotFoundError if path does not exist.
	Lookup(path string) (Value, error)

	// InvokeMethod calls the control method at path with args and
	// returns its result. Returns a *NotFoundError if path does not
	// exist.
	InvokeMethod(path string, args Args) (Value, error)
}
