// Package test collects small assertion helpers shared by the unit tests of
// every other package in the module. It exists so that test files read the
// same way regardless of which package they belong to.
package test

import (
	"math"
	"testing"
)

// ExpectFailure checks that the supplied value represents a failure. A
// failure is a non-nil error, or a boolean false.
func ExpectFailure(t *testing.T, v interface{}) {
	t.Helper()

	switch v := v.(type) {
	case error:
		if v == nil {
			t.Errorf("expected failure but got nil error")
		}
	case bool:
		if v {
			t.Errorf("expected failure but got success")
		}
	default:
		t.Errorf("unsupported type for ExpectFailure: %T", v)
	}
}

// ExpectSuccess checks that the supplied value represents success. Success is
// a nil error, or a boolean true.
func ExpectSuccess(t *testing.T, v interface{}) {
	t.Helper()

	switch v := v.(type) {
	case error:
		if v != nil {
			t.Errorf("expected success but got error: %v", v)
		}
	case bool:
		if !v {
			t.Errorf("expected success but got failure")
		}
	case nil:
		// a bare nil passed as interface{} is success by definition
	default:
		t.Errorf("unsupported type for ExpectSuccess: %T", v)
	}
}

// Equate fails the test if a and b are not equal. Kept separate from
// ExpectEquality because it predates it and a lot of older tests still use
// this name.
func Equate(t *testing.T, a, b interface{}) {
	t.Helper()
	if a != b {
		t.Errorf("expected equality: %v != %v", a, b)
	}
}

// ExpectEquality fails the test if a and b are not equal.
func ExpectEquality(t *testing.T, a, b interface{}) {
	t.Helper()
	if a != b {
		t.Errorf("expected equality: %v != %v", a, b)
	}
}

// ExpectInequality fails the test if a and b are equal.
func ExpectInequality(t *testing.T, a, b interface{}) {
	t.Helper()
	if a == b {
		t.Errorf("expected inequality: %v == %v", a, b)
	}
}

// ExpectApproximate fails the test if a and b differ by more than tolerance.
func ExpectApproximate(t *testing.T, a, b, tolerance float64) {
	t.Helper()
	if math.Abs(a-b) > tolerance {
		t.Errorf("expected %v to be within %v of %v", a, tolerance, b)
	}
}
