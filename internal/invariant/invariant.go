// Package invariant provides contract assertions for the interpreter.
//
// Precondition/Postcondition/Invariant express function contracts the way
// Tiger-Style assertions do: a violation is a programming error inside this
// process, not a user-facing shell failure, so these panic rather than
// return an error. User-facing failures (bad syntax, unknown command, a
// failed open(2)) are ordinary Go errors and never go through this package.
package invariant

import (
	"fmt"
	"reflect"
)

func fail(kind, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	panic(fmt.Sprintf("%s VIOLATION: %s", kind, msg))
}

// Precondition checks an input contract at function entry.
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before function return.
func Postcondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks an internal consistency condition mid-function.
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including a typed nil pointer/interface.
func NotNil(value interface{}, name string) {
	if value == nil {
		fail("PRECONDITION", "%s must not be nil", name)
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		if v.IsNil() {
			fail("PRECONDITION", "%s must not be nil", name)
		}
	}
}

// InRange panics if value falls outside [min, max].
func InRange(value, min, max int, name string) {
	if value < min || value > max {
		fail("PRECONDITION", "%s must be in range [%d, %d], got %d", name, min, max, value)
	}
}
