package acpi

import (
	"testing"

	"github.com/alnyan/acpi-system/aml/amltest"
	"github.com/alnyan/acpi-system/hal/hosttest"
	"github.com/alnyan/acpi-system/table"
)

func newTestSystem(t *testing.T, fadt *table.FADT) (*AcpiSystem, *hosttest.Platform, *amltest.Context) {
	t.Helper()

	plat, err := hosttest.New(0, 1<<20)
	if err != nil {
		t.Fatalf("hosttest.New: %v", err)
	}
	t.Cleanup(func() { plat.Close() })

	amlCtx := amltest.New()
	sys := New(plat, amlCtx, fadt)
	return sys, plat, amlCtx
}

func simpleFADT() *table.FADT {
	return &table.FADT{
		SMICommandPort:    0xB2,
		AcpiEnable:        0xA1,
		AcpiDisable:       0xA0,
		SCIInterrupt:      9,
		PM1aEventBlock:    0x1000,
		PM1EventLength:    4,
		PM1aControlBlock:  0x1008,
		PM1ControlLength:  2,
		GPE0Block:         0x1010,
		GPE0Length:        8,
	}
}

func TestAccessBitWidthExactWidthIgnoresAccessSize(t *testing.T) {
	for _, width := range []uint8{8, 16, 32, 64} {
		reg := table.GenericAddress{BitWidth: width, AccessSize: table.AccessSizeByte}
		if got := accessBitWidth(reg, 0x1000, 64); got != width {
			t.Errorf("width %d: got %d", width, got)
		}
	}
}

func TestAccessBitWidthSystemIOCapsAt32(t *testing.T) {
	reg := table.GenericAddress{Space: table.AddressSpaceSystemIO, BitWidth: 64, AccessSize: table.AccessSizeQWord}
	if got := accessBitWidth(reg, 0, 64); got != 32 {
		t.Fatalf("got %d, want 32", got)
	}
}

func TestBitRegisterRoundTrip(t *testing.T) {
	raw := uint32(0)
	raw = SleepEnable.SetRaw(raw, true)
	if !SleepEnable.GetFromRaw(raw) {
		t.Fatal("expected SleepEnable bit set")
	}
	if WakeStatus.GetFromRaw(raw) {
		t.Fatal("expected WakeStatus bit untouched")
	}
}

func TestSleepTypeSetRawTouchesOnlyItsRange(t *testing.T) {
	raw := uint32(0xFFFFFFFF)
	raw = SleepType.SetRaw(raw, 5)

	if SleepType.GetFromRaw(raw) != 5 {
		t.Fatalf("got %d, want 5", SleepType.GetFromRaw(raw))
	}
	// Bits outside 10..13 must be untouched (still 1 from the all-ones seed).
	if raw&(1<<9) == 0 || raw&(1<<13) == 0 {
		t.Fatalf("SetRaw disturbed bits outside its range: %#x", raw)
	}
}

func TestPm1EnableReadWriteRoundTrip(t *testing.T) {
	fadt := simpleFADT()
	sys, _, _ := newTestSystem(t, fadt)

	if err := sys.WriteRegister(Pm1Enable, 0x0321); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	got, err := sys.ReadRegister(Pm1Enable)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if got != 0x0321 {
		t.Fatalf("got %#x, want 0x321", got)
	}
}

func TestPm1StatusWriteStripsPreservedBit(t *testing.T) {
	fadt := simpleFADT()
	sys, plat, _ := newTestSystem(t, fadt)

	if err := sys.WriteRegister(Pm1Status, 0xFFFFFFFF); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}

	var lastWrite uint32
	for _, c := range plat.Calls {
		if c.Op == "io_write16" || c.Op == "io_write32" || c.Op == "io_write8" {
			lastWrite = uint32(c.Value)
		}
	}
	if lastWrite&PM1StatusPreservedBits != 0 {
		t.Fatalf("bit 11 leaked into hardware write: %#x", lastWrite)
	}
}

func TestWritePm1ControlWritesDistinctHalves(t *testing.T) {
	fadt := simpleFADT()
	fadt.PM1bControlBlock = 0x100A
	sys, plat, _ := newTestSystem(t, fadt)

	if err := sys.WritePm1Control(0x1234, 0x5678); err != nil {
		t.Fatalf("WritePm1Control: %v", err)
	}

	var sawA, sawB bool
	for _, c := range plat.Calls {
		if c.Address == 0x1008 {
			sawA = true
			if c.Value&0xFFFF != 0x1234 {
				t.Errorf("PM1a write value = %#x, want 0x1234", c.Value)
			}
		}
		if c.Address == 0x100A {
			sawB = true
			if c.Value&0xFFFF != 0x5678 {
				t.Errorf("PM1b write value = %#x, want 0x5678", c.Value)
			}
		}
	}
	if !sawA || !sawB {
		t.Fatalf("expected writes to both PM1a (0x1008) and PM1b (0x100A), calls=%+v", plat.Calls)
	}
}

func Test24BitFieldReadAcrossTwo16BitAccesses(t *testing.T) {
	fadt := simpleFADT()
	sys, plat, _ := newTestSystem(t, fadt)

	reg := table.GenericAddress{
		Space:      table.AddressSpaceSystemMemory,
		Address:    0x2000,
		BitWidth:   24,
		AccessSize: table.AccessSizeWord,
	}

	plat.WriteMemory16(0x2000, 0x1234)
	plat.WriteMemory16(0x2002, 0x00AB)

	value, err := sys.readAddress(reg)
	if err != nil {
		t.Fatalf("readAddress: %v", err)
	}
	if value != 0x00AB1234 {
		t.Fatalf("got %#x, want 0xab1234", value)
	}
}
