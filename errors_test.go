package acpi

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := wrapError(AmlError, "parse DSDT", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find cause through Unwrap")
	}
}

func TestErrorMessageFormatting(t *testing.T) {
	err := newError(EnableTimeout, "SCI_ENABLE never set")
	want := "ACPI mode enable timed out: SCI_ENABLE never set"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		TableError:                  "table error",
		ModeTransitionNotSupported:  "no ACPI mode transition is supported by this platform",
		InvalidSleepValues:          "invalid sleep type values",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("kind %d: got %q, want %q", kind, got, want)
		}
	}
}
