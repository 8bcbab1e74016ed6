package acpi

import "testing"

func TestSetAcpiModeSucceedsOnFirstPoll(t *testing.T) {
	fadt := simpleFADT()
	sys, plat, _ := newTestSystem(t, fadt)

	// SCI_ENABLE already reads 1 by the time the poll loop runs, so the
	// mode transition should succeed after exactly one SMI write and the
	// first poll read, with no stall at all (spec.md §8.1).
	plat.SetIOPort(uint16(fadt.PM1aControlBlock), 1<<0)

	if err := sys.SetAcpiMode(true); err != nil {
		t.Fatalf("SetAcpiMode: %v", err)
	}

	var smiWrites, stalls int
	for _, c := range plat.Calls {
		if c.Op == "io_write8" && c.Address == uint64(fadt.SMICommandPort) {
			smiWrites++
		}
		if c.Op == "stall" {
			stalls++
		}
	}
	if smiWrites != 1 {
		t.Fatalf("expected exactly 1 SMI write, got %d", smiWrites)
	}
	if stalls != 0 {
		t.Fatalf("expected no stall when SCI_ENABLE is already set, got %d", stalls)
	}
}

func TestSetAcpiModeNotSupported(t *testing.T) {
	fadt := simpleFADT()
	fadt.AcpiEnable = 0
	fadt.AcpiDisable = 0
	sys, plat, _ := newTestSystem(t, fadt)

	err := sys.SetAcpiMode(true)
	acpiErr, ok := err.(*Error)
	if !ok || acpiErr.Kind != ModeTransitionNotSupported {
		t.Fatalf("expected ModeTransitionNotSupported, got %v", err)
	}
	for _, c := range plat.Calls {
		if c.Op == "io_write8" && c.Address == uint64(fadt.SMICommandPort) {
			t.Fatalf("no port write should occur, but got %+v", c)
		}
	}
}

func TestSetAcpiModeTimesOutAfter3000Polls(t *testing.T) {
	fadt := simpleFADT()
	sys, plat, _ := newTestSystem(t, fadt)
	// SCI_ENABLE never sets: PM1aControlBlock stays at its zero default.

	err := sys.SetAcpiMode(true)
	acpiErr, ok := err.(*Error)
	if !ok || acpiErr.Kind != EnableTimeout {
		t.Fatalf("expected EnableTimeout, got %v", err)
	}

	stalls := 0
	for _, c := range plat.Calls {
		if c.Op == "stall" {
			stalls++
		}
	}
	if stalls != modeEnablePollAttempts {
		t.Fatalf("expected %d stalls, got %d", modeEnablePollAttempts, stalls)
	}
}

func TestIsAcpiEnabledHardwareReducedPlatform(t *testing.T) {
	fadt := simpleFADT()
	fadt.SMICommandPort = 0
	sys, _, _ := newTestSystem(t, fadt)

	enabled, err := sys.IsAcpiEnabled()
	if err != nil {
		t.Fatalf("IsAcpiEnabled: %v", err)
	}
	if !enabled {
		t.Fatal("expected hardware-reduced platform to report already enabled")
	}
}
