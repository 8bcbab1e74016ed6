package amltest

import (
	"errors"
	"testing"

	"github.com/alnyan/acpi-system/aml"
)

func TestLookupMissingObjectIsNotFound(t *testing.T) {
	ctx := New()
	_, err := ctx.Lookup(`\_S5_`)
	if !aml.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSetSleepPackageRoundTrips(t *testing.T) {
	ctx := New()
	ctx.SetSleepPackage(`\_S5_`, 5, 5)

	v, err := ctx.Lookup(`\_S5_`)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v.Kind != aml.KindPackage || len(v.Package) != 2 {
		t.Fatalf("unexpected value %+v", v)
	}
	a, _ := v.Package[0].AsInteger()
	b, _ := v.Package[1].AsInteger()
	if a != 5 || b != 5 {
		t.Fatalf("got (%d, %d), want (5, 5)", a, b)
	}
}

func TestInvokeMethodRecordsInvocation(t *testing.T) {
	ctx := New()
	ctx.Methods[`\_PIC`] = aml.Value{Kind: aml.KindInteger, Integer: 0}

	_, err := ctx.InvokeMethod(`\_PIC`, aml.IntArgs(1))
	if err != nil {
		t.Fatalf("InvokeMethod: %v", err)
	}

	if len(ctx.Invocations) != 1 || ctx.Invocations[0].Path != `\_PIC` {
		t.Fatalf("unexpected invocations: %+v", ctx.Invocations)
	}
}

func TestInvokeMethodMissingIsNotFound(t *testing.T) {
	ctx := New()
	_, err := ctx.InvokeMethod(`\_PTS`, aml.IntArgs(5))
	if !aml.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestInvokeMethodCustomError(t *testing.T) {
	ctx := New()
	want := errors.New("boom")
	ctx.MethodErrors[`\_PTS`] = want

	_, err := ctx.InvokeMethod(`\_PTS`, aml.IntArgs(5))
	if !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func TestLoadFixtureBuildsNamespace(t *testing.T) {
	ctx, err := Load("testdata/sleep.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	v, err := ctx.Lookup(`\_S5_`)
	if err != nil {
		t.Fatalf("Lookup(\\_S5_): %v", err)
	}
	if v.Kind != aml.KindPackage || len(v.Package) != 2 {
		t.Fatalf("unexpected \\_S5_ value %+v", v)
	}
	a, _ := v.Package[0].AsInteger()
	b, _ := v.Package[1].AsInteger()
	if a != 5 || b != 5 {
		t.Fatalf("got (%d, %d), want (5, 5)", a, b)
	}

	if _, err := ctx.Lookup(`\_S0_`); err != nil {
		t.Fatalf("Lookup(\\_S0_): %v", err)
	}

	result, err := ctx.InvokeMethod(`\_PTS`, aml.IntArgs(5))
	if err != nil {
		t.Fatalf("InvokeMethod(_PTS): %v", err)
	}
	n, _ := result.AsInteger()
	if n != 0 {
		t.Fatalf("got _PTS result %d, want 0", n)
	}

	if len(ctx.Invocations) != 1 || ctx.Invocations[0].Path != `\_PTS` {
		t.Fatalf("expected _PTS invocation to be recorded, got %+v", ctx.Invocations)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("testdata/does-not-exist.yaml"); err == nil {
		t.Fatal("expected an error for a missing fixture file")
	}
}
