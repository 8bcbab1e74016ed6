package acpi

import (
	"fmt"

	"github.com/alnyan/acpi-system/table"
)

// PM1StatusPreservedBits masks BM_STS (bit 11): writing a 1 to it would
// inadvertently clear a sticky bit the platform sets, so WriteRegister
// always strips it before writing PM1 Status.
const PM1StatusPreservedBits uint32 = 1 << 11

// LogicalRegister identifies one of the three PM1 logical registers. Each
// resolves, through the Facade's cached address set, to a primary (A) and
// optional secondary (B) GenericAddress.
type LogicalRegister uint8

const (
	Pm1Status LogicalRegister = iota
	Pm1Enable
	Pm1Control
)

// BitRegister names a single bit within a LogicalRegister.
type BitRegister struct {
	Parent   LogicalRegister
	Position uint8
}

// The named bit registers from spec.md §3.
var (
	SCIEnable    = BitRegister{Parent: Pm1Control, Position: 0}
	SleepEnable  = BitRegister{Parent: Pm1Control, Position: 13}
	WakeStatus   = BitRegister{Parent: Pm1Status, Position: 15}
)

// Get reads the parent register through sys and returns the bit at r's
// position.
func (r BitRegister) Get(sys *AcpiSystem) (bool, error) {
	v, err := sys.ReadRegister(r.Parent)
	if err != nil {
		return false, err
	}
	return r.GetFromRaw(v), nil
}

// Set performs a read-modify-write of r's parent register, setting or
// clearing r's bit.
func (r BitRegister) Set(sys *AcpiSystem, value bool) error {
	v, err := sys.ReadRegister(r.Parent)
	if err != nil {
		return err
	}
	return sys.WriteRegister(r.Parent, r.SetRaw(v, value))
}

// GetFromRaw returns r's bit from an already-read register value.
func (r BitRegister) GetFromRaw(raw uint32) bool {
	return raw&(1<<r.Position) != 0
}

// SetRaw returns raw with r's bit set or cleared.
func (r BitRegister) SetRaw(raw uint32, value bool) uint32 {
	if value {
		return raw | (1 << r.Position)
	}
	return raw &^ (1 << r.Position)
}

// BitRangeRegister names an inclusive-low/exclusive-high bit range within a
// LogicalRegister's value.
type BitRangeRegister struct {
	Low  uint8
	High uint8
}

// SleepType is the 3-bit SLP_TYP field of PM1 Control, bits 10..13.
var SleepType = BitRangeRegister{Low: 10, High: 13}

func (r BitRangeRegister) mask() uint32 {
	width := r.High - r.Low
	return ((uint32(1) << width) - 1) << r.Low
}

// SetRaw splices v into raw at r's bit range, leaving every other bit
// untouched.
func (r BitRangeRegister) SetRaw(raw uint32, v uint32) uint32 {
	m := r.mask()
	return (raw &^ m) | ((v << r.Low) & m)
}

// GetFromRaw extracts r's bit range from an already-read register value.
func (r BitRangeRegister) GetFromRaw(raw uint32) uint32 {
	m := r.mask()
	return (raw & m) >> r.Low
}

// accessBitWidth selects the platform access width for reg, per spec.md
// §4.1. It is computed once per register access and the same width is used
// for every stride. address is the Generic Address's own base address (the
// callers pass reg.Address); maximumWidth is always 64 from this package's
// call sites.
func accessBitWidth(reg table.GenericAddress, address uint64, maximumWidth uint8) uint8 {
	var width uint8

	switch {
	case reg.BitOffset == 0 && reg.BitWidth != 0 && isPowerOfTwo(reg.BitWidth) && reg.BitWidth%8 == 0:
		width = reg.BitWidth
	case reg.AccessSize != table.AccessSizeUndefined:
		switch reg.AccessSize {
		case table.AccessSizeByte:
			width = 8
		case table.AccessSizeWord:
			width = 16
		case table.AccessSizeDWord:
			width = 32
		case table.AccessSizeQWord:
			width = 64
		}
	default:
		w := nextPowerOfTwo(reg.BitOffset + reg.BitWidth)
		if w < 8 {
			w = 8
		} else {
			for address%uint64(w) != 0 {
				w >>= 1
			}
		}
		width = w
	}

	if reg.Space == table.AddressSpaceSystemIO && maximumWidth > 32 {
		maximumWidth = 32
	}
	if width > maximumWidth {
		width = maximumWidth
	}
	return width
}

func isPowerOfTwo(v uint8) bool {
	return v != 0 && v&(v-1) == 0
}

func nextPowerOfTwo(v uint8) uint8 {
	if v == 0 {
		return 0
	}
	p := uint8(1)
	for p < v {
		p <<= 1
	}
	return p
}

// readAddressSpace dispatches a single width-bounded raw read to the host
// platform, per spec.md §4.1's "Raw access dispatch". The SystemIO 16- and
// 32-bit cases are NOT swapped here — see spec.md §9's corrected mapping.
func (sys *AcpiSystem) readAddressSpace(space table.AddressSpace, address uint64, width uint8) (uint64, error) {
	switch space {
	case table.AddressSpaceSystemMemory:
		switch width {
		case 8:
			return uint64(sys.platform.ReadMemory8(address)), nil
		case 16:
			return uint64(sys.platform.ReadMemory16(address)), nil
		case 32:
			return uint64(sys.platform.ReadMemory32(address)), nil
		case 64:
			return sys.platform.ReadMemory64(address), nil
		}
	case table.AddressSpaceSystemIO:
		port := uint16(address)
		switch width {
		case 8:
			return uint64(sys.platform.ReadIOPort8(port)), nil
		case 16:
			return uint64(sys.platform.ReadIOPort16(port)), nil
		case 32:
			return uint64(sys.platform.ReadIOPort32(port)), nil
		}
	}
	return 0, newError(TableError, fmt.Sprintf("unsupported access: space=%d width=%d", space, width))
}

// writeAddressSpace is the write-side counterpart of readAddressSpace.
func (sys *AcpiSystem) writeAddressSpace(space table.AddressSpace, address uint64, width uint8, value uint64) error {
	switch space {
	case table.AddressSpaceSystemMemory:
		switch width {
		case 8:
			sys.platform.WriteMemory8(address, uint8(value))
			return nil
		case 16:
			sys.platform.WriteMemory16(address, uint16(value))
			return nil
		case 32:
			sys.platform.WriteMemory32(address, uint32(value))
			return nil
		case 64:
			sys.platform.WriteMemory64(address, value)
			return nil
		}
	case table.AddressSpaceSystemIO:
		port := uint16(address)
		switch width {
		case 8:
			sys.platform.WriteIOPort8(port, uint8(value))
			return nil
		case 16:
			sys.platform.WriteIOPort16(port, uint16(value))
			return nil
		case 32:
			sys.platform.WriteIOPort32(port, uint32(value))
			return nil
		}
	}
	return newError(TableError, fmt.Sprintf("unsupported access: space=%d width=%d", space, width))
}

// readAddress implements the Generic Address Accessor's stride algorithm
// for reads (spec.md §4.1).
func (sys *AcpiSystem) readAddress(reg table.GenericAddress) (uint64, error) {
	address := reg.Address
	accessWidth := accessBitWidth(reg, address, 64)
	remaining := uint32(reg.BitWidth) + uint32(reg.BitOffset)
	offset := uint32(reg.BitOffset)

	var value uint64
	var index uint32
	for remaining != 0 {
		var data uint64
		if offset >= uint32(accessWidth) {
			offset -= uint32(accessWidth)
		} else {
			accessAddress := address + uint64(index)*uint64(accessWidth)/8
			d, err := sys.readAddressSpace(reg.Space, accessAddress, accessWidth)
			if err != nil {
				return 0, err
			}
			data = d
		}

		bitPosition := index * uint32(accessWidth)
		value |= (data & widthMask(accessWidth)) << bitPosition

		if remaining > uint32(accessWidth) {
			remaining -= uint32(accessWidth)
		} else {
			break
		}
		index++
	}

	return value, nil
}

// writeAddress implements the Generic Address Accessor's stride algorithm
// for writes (spec.md §4.1).
func (sys *AcpiSystem) writeAddress(reg table.GenericAddress, value uint64) error {
	address := reg.Address
	accessWidth := accessBitWidth(reg, address, 64)
	remaining := uint32(reg.BitWidth) + uint32(reg.BitOffset)
	offset := uint32(reg.BitOffset)

	var index uint32
	for remaining != 0 {
		bitPosition := index * uint32(accessWidth)
		bits := (value >> bitPosition) & widthMask(accessWidth)

		if offset >= uint32(accessWidth) {
			offset -= uint32(accessWidth)
		} else {
			accessAddress := address + uint64(index)*uint64(accessWidth)/8
			if err := sys.writeAddressSpace(reg.Space, accessAddress, accessWidth, bits); err != nil {
				return err
			}
		}

		if remaining > uint32(accessWidth) {
			remaining -= uint32(accessWidth)
		} else {
			break
		}
		index++
	}

	return nil
}

func widthMask(width uint8) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

func readRegisterPair(sys *AcpiSystem, a, b table.GenericAddress, hasB bool) (uint32, error) {
	va, err := sys.readAddress(a)
	if err != nil {
		return 0, err
	}
	var vb uint64
	if hasB {
		vb, err = sys.readAddress(b)
		if err != nil {
			return 0, err
		}
	}
	return uint32(va) | uint32(vb), nil
}

func writeRegisterPair(sys *AcpiSystem, a, b table.GenericAddress, hasB bool, value uint32) error {
	if err := sys.writeAddress(a, uint64(value)); err != nil {
		return err
	}
	if hasB {
		if err := sys.writeAddress(b, uint64(value)); err != nil {
			return err
		}
	}
	return nil
}

// ReadRegister reads a LogicalRegister, OR-ing A and B together when a
// secondary register is present (spec.md §4.2).
func (sys *AcpiSystem) ReadRegister(id LogicalRegister) (uint32, error) {
	switch id {
	case Pm1Status:
		return readRegisterPair(sys, sys.pm1aStatus, sys.pm1bStatus, sys.hasPm1b)
	case Pm1Enable:
		return readRegisterPair(sys, sys.pm1aEnable, sys.pm1bEnable, sys.hasPm1b)
	case Pm1Control:
		a := sys.fadt.PM1aControlAddress()
		b := sys.fadt.PM1bControlAddress()
		return readRegisterPair(sys, a, b, b.Valid())
	default:
		return 0, newError(TableError, "unknown logical register")
	}
}

// WriteRegister writes a LogicalRegister to both A and (if present) B. Pm1
// Control is not supported through this path; use WritePm1Control, since
// its two halves may need distinct values (spec.md §4.2).
func (sys *AcpiSystem) WriteRegister(id LogicalRegister, value uint32) error {
	switch id {
	case Pm1Status:
		value &^= PM1StatusPreservedBits
		return writeRegisterPair(sys, sys.pm1aStatus, sys.pm1bStatus, sys.hasPm1b, value)
	case Pm1Enable:
		return writeRegisterPair(sys, sys.pm1aEnable, sys.pm1bEnable, sys.hasPm1b, value)
	case Pm1Control:
		return newError(TableError, "Pm1Control must be written through WritePm1Control")
	default:
		return newError(TableError, "unknown logical register")
	}
}

// WritePm1Control writes distinct values to the PM1a and (if present) PM1b
// control registers, since SLP_TYP differs between the two halves during a
// sleep transition (spec.md §4.2, §4.5).
func (sys *AcpiSystem) WritePm1Control(valueA, valueB uint32) error {
	a := sys.fadt.PM1aControlAddress()
	b := sys.fadt.PM1bControlAddress()

	if err := sys.writeAddress(a, uint64(valueA)); err != nil {
		return err
	}
	if b.Valid() {
		if err := sys.writeAddress(b, uint64(valueB)); err != nil {
			return err
		}
	}
	return nil
}
