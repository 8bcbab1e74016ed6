package table

import "testing"

func TestGenericAddressValid(t *testing.T) {
	var zero GenericAddress
	if zero.Valid() {
		t.Fatal("zero-address GenericAddress should not be valid")
	}

	addr := GenericAddress{Space: AddressSpaceSystemIO, Address: 0xB2, BitWidth: 8}
	if !addr.Valid() {
		t.Fatal("nonzero-address GenericAddress should be valid")
	}
}

func TestFADTPreferExtendedOverLegacy(t *testing.T) {
	f := &FADT{
		PM1aControlBlock: 0x1004,
		PM1ControlLength: 2,
	}
	f.Ext.PM1aControlBlock = GenericAddress{Space: AddressSpaceSystemMemory, Address: 0xFEE00000, BitWidth: 16}

	got := f.PM1aControlAddress()
	if got.Space != AddressSpaceSystemMemory || got.Address != 0xFEE00000 {
		t.Fatalf("expected extended address to win, got %+v", got)
	}
}

func TestFADTFallsBackToLegacy(t *testing.T) {
	f := &FADT{
		PM1aControlBlock: 0x1004,
		PM1ControlLength: 2,
	}

	got := f.PM1aControlAddress()
	want := GenericAddress{Space: AddressSpaceSystemIO, Address: 0x1004, BitWidth: 16}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFADTSecondaryBlocksAbsentByDefault(t *testing.T) {
	f := &FADT{}

	if got := f.PM1bStatusAddress(); got.Valid() {
		t.Fatalf("expected absent PM1b status register, got %+v", got)
	}
	if got := f.PM1bEnableAddress(); got.Valid() {
		t.Fatalf("expected absent PM1b enable register, got %+v", got)
	}
	if got := f.PM1bControlAddress(); got.Valid() {
		t.Fatalf("expected absent PM1b control block, got %+v", got)
	}
	if _, _, ok := f.GPE1BlockAddress(); ok {
		t.Fatal("expected absent GPE1 block")
	}
}

func TestFADTDsdtAddressPrefersExtended(t *testing.T) {
	f := &FADT{Dsdt: 0x2000}
	f.Ext.Dsdt = 0x100000000

	addr, ok := f.DsdtAddress()
	if !ok || addr != 0x100000000 {
		t.Fatalf("got (%#x, %v), want (0x100000000, true)", addr, ok)
	}
}

func TestFADTDsdtAddressFallsBackToLegacy(t *testing.T) {
	f := &FADT{Dsdt: 0x2000}

	addr, ok := f.DsdtAddress()
	if !ok || addr != 0x2000 {
		t.Fatalf("got (%#x, %v), want (0x2000, true)", addr, ok)
	}
}

func TestFADTDsdtAddressAbsent(t *testing.T) {
	f := &FADT{}

	if _, ok := f.DsdtAddress(); ok {
		t.Fatal("expected no DSDT address")
	}
}

func TestFADTGPE0BlockAddress(t *testing.T) {
	f := &FADT{
		GPE0Block:  0x1000,
		GPE0Length: 8,
	}

	addr, length, ok := f.GPE0BlockAddress()
	if !ok {
		t.Fatal("expected GPE0 block present")
	}
	if length != 8 {
		t.Fatalf("expected length 8, got %d", length)
	}
	if addr.Address != 0x1000 || addr.Space != AddressSpaceSystemIO {
		t.Fatalf("unexpected address %+v", addr)
	}
}
