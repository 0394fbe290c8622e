package testutil

import (
	"testing"

	"github.com/bawdo/quarry/nodes"
)

// AssertEqual checks that got == want and reports a descriptive error if not.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("expected:\n  %v\ngot:\n  %v", want, got)
	}
}

// AssertNodeEqual checks two AST nodes for structural equality.
func AssertNodeEqual(t *testing.T, got, want nodes.Node) {
	t.Helper()
	if !nodes.Equal(got, want) {
		t.Errorf("expected:\n  %#v\ngot:\n  %#v", want, got)
	}
}

// AssertNoError fails the test if err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error but got nil")
	}
}
