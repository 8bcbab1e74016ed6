// Package table defines the ACPI table structures consumed by the acpi
// package: the Generic Address Structure and the Fixed ACPI Description
// Table. Table discovery and checksum validation are out of scope (spec.md
// §1); callers hand in an already-mapped, already-validated *FADT.
package table

// SDTHeader is the common header shared by every ACPI table.
type SDTHeader struct {
	Signature [4]byte
	Length    uint32

	// Revision distinguishes 32-bit (< 2) from 64-bit (>= 2) AML integers
	// when this header belongs to a DSDT/SSDT.
	Revision uint8
	Checksum uint8

	OEMID       [6]byte
	OEMTableID  [8]byte
	OEMRevision uint32

	CreatorID       uint32
	CreatorRevision uint32
}

// AddressSpace identifies where a Generic Address's bytes live.
type AddressSpace uint8

// The address spaces the Generic Address Accessor knows how to dispatch
// (spec.md §4.1). Spaces beyond these two are accepted at parse time but
// fail at access time with a TableError.
const (
	AddressSpaceSystemMemory AddressSpace = iota
	AddressSpaceSystemIO
	AddressSpacePCI
	AddressSpaceEmbController
	AddressSpaceSMBus
	AddressSpaceFuncFixedHW AddressSpace = 0x7f
)

// AccessSize is the GAS-declared access width, when declared.
type AccessSize uint8

// The access sizes a Generic Address Structure may declare explicitly.
const (
	AccessSizeUndefined AccessSize = iota
	AccessSizeByte
	AccessSizeWord
	AccessSizeDWord
	AccessSizeQWord
)

// GenericAddress is the ACPI Generic Address Structure: a register range
// addressed within one of the spaces above. Immutable after parsing.
type GenericAddress struct {
	Space      AddressSpace
	BitWidth   uint8
	BitOffset  uint8
	AccessSize AccessSize
	Address    uint64
}

// Valid reports whether a has a nonzero address, matching the FADT
// convention that an all-zero Generic Address means "not present" (used to
// detect an absent PM1b or GPE1 block).
func (a GenericAddress) Valid() bool {
	return a.Address != 0
}

// PowerProfile describes the power profile a FADT declares.
type PowerProfile uint8

const (
	PowerProfileUnspecified PowerProfile = iota
	PowerProfileDesktop
	PowerProfileMobile
	PowerProfileWorkstation
	PowerProfileEnterpriseServer
	PowerProfileSOHOServer
	PowerProfileAppliancePC
	PowerProfilePerformanceServer
)

// FADTExtended holds the 64-bit register addresses introduced by ACPI 2.0+.
// When Ext's fields are themselves unset (Address == 0), the legacy 32-bit
// fields on FADT take precedence.
type FADTExtended struct {
	FirmwareControl uint64
	Dsdt            uint64

	PM1aEventBlock   GenericAddress
	PM1bEventBlock   GenericAddress
	PM1aControlBlock GenericAddress
	PM1bControlBlock GenericAddress
	PM2ControlBlock  GenericAddress
	PMTimerBlock     GenericAddress
	GPE0Block        GenericAddress
	GPE1Block        GenericAddress
}

// FADT is the Fixed ACPI Description Table: the root table this module
// reads to locate PM1a/PM1b register blocks, the SMI command port, the SCI
// interrupt number, and the GPE blocks.
type FADT struct {
	SDTHeader

	FirmwareCtrl uint32
	Dsdt         uint32

	reserved uint8

	PreferredPowerManagementProfile PowerProfile
	SCIInterrupt                    uint16
	SMICommandPort                  uint32
	AcpiEnable                      uint8
	AcpiDisable                     uint8
	S4BIOSReq                       uint8
	PSTATEControl                   uint8

	PM1aEventBlock    uint32
	PM1bEventBlock    uint32
	PM1aControlBlock  uint32
	PM1bControlBlock  uint32
	PM2ControlBlock   uint32
	PMTimerBlock      uint32
	GPE0Block         uint32
	GPE1Block         uint32
	PM1EventLength    uint8
	PM1ControlLength  uint8
	PM2ControlLength  uint8
	PMTimerLength     uint8
	GPE0Length        uint8
	GPE1Length        uint8
	GPE1Base          uint8
	CStateControl     uint8
	WorstC2Latency    uint16
	WorstC3Latency    uint16
	FlushSize         uint16
	FlushStride       uint16
	DutyOffset        uint8
	DutyWidth         uint8
	DayAlarm          uint8
	MonthAlarm        uint8
	Century           uint8

	// Reserved in ACPI 1.0; used since ACPI 2.0.
	BootArchitectureFlags uint16

	reserved2 uint8
	Flags     uint32

	ResetReg GenericAddress

	ResetValue uint8
	reserved3  [3]uint8

	// 64-bit register addresses used by ACPI 2.0+; zero when the table
	// predates them.
	Ext FADTExtended
}

func legacyIOAddress(addr uint32, width uint8) GenericAddress {
	return GenericAddress{
		Space:    AddressSpaceSystemIO,
		Address:  uint64(addr),
		BitWidth: width,
	}
}

// eventBlockHalves splits a PM1x_EVT_BLK base address into its status and
// enable halves: a status-register array immediately followed by an
// equally sized enable-register array (ACPI 4.8.3.1, the same split
// spec.md §4.4 describes for GPE blocks). lengthBytes is the block's total
// declared length (FADT.PM1EventLength).
func eventBlockHalves(base GenericAddress, lengthBytes uint8) (status, enable GenericAddress) {
	halfBitWidth := uint8(lengthBytes) * 4 // lengthBytes/2 bytes, in bits
	status = base
	status.BitWidth = halfBitWidth
	enable = base
	enable.Address += uint64(lengthBytes) / 2
	enable.BitWidth = halfBitWidth
	return status, enable
}

// DsdtAddress returns the DSDT's physical address, preferring the ACPI
// 2.0+ extended field when present. ok is false when neither field is set.
// The DSDT carries its own length in its SDTHeader, so unlike the register
// blocks there is no companion length field here; the caller maps the
// header first to learn it.
func (f *FADT) DsdtAddress() (address uint64, ok bool) {
	if f.Ext.Dsdt != 0 {
		return f.Ext.Dsdt, true
	}
	if f.Dsdt != 0 {
		return uint64(f.Dsdt), true
	}
	return 0, false
}

// PM1aStatusAddress returns the PM1a status half of the Event Block,
// preferring the ACPI 2.0+ extended field when present.
func (f *FADT) PM1aStatusAddress() GenericAddress {
	status, _ := f.pm1aEventHalves()
	return status
}

// PM1aEnableAddress returns the PM1a enable half of the Event Block.
func (f *FADT) PM1aEnableAddress() GenericAddress {
	_, enable := f.pm1aEventHalves()
	return enable
}

func (f *FADT) pm1aEventHalves() (status, enable GenericAddress) {
	if f.Ext.PM1aEventBlock.Valid() {
		return eventBlockHalves(f.Ext.PM1aEventBlock, f.PM1EventLength)
	}
	return eventBlockHalves(legacyIOAddress(f.PM1aEventBlock, 0), f.PM1EventLength)
}

// PM1bStatusAddress returns the PM1b status half of the Event Block, or the
// zero value if the platform has no secondary PM1 block.
func (f *FADT) PM1bStatusAddress() GenericAddress {
	status, _, ok := f.pm1bEventHalves()
	if !ok {
		return GenericAddress{}
	}
	return status
}

// PM1bEnableAddress returns the PM1b enable half of the Event Block, or the
// zero value if absent.
func (f *FADT) PM1bEnableAddress() GenericAddress {
	_, enable, ok := f.pm1bEventHalves()
	if !ok {
		return GenericAddress{}
	}
	return enable
}

func (f *FADT) pm1bEventHalves() (status, enable GenericAddress, ok bool) {
	if f.Ext.PM1bEventBlock.Valid() {
		status, enable = eventBlockHalves(f.Ext.PM1bEventBlock, f.PM1EventLength)
		return status, enable, true
	}
	if f.PM1bEventBlock == 0 {
		return GenericAddress{}, GenericAddress{}, false
	}
	status, enable = eventBlockHalves(legacyIOAddress(f.PM1bEventBlock, 0), f.PM1EventLength)
	return status, enable, true
}

// PM1aControlAddress returns the PM1a Control Block's Generic Address.
func (f *FADT) PM1aControlAddress() GenericAddress {
	if f.Ext.PM1aControlBlock.Valid() {
		return f.Ext.PM1aControlBlock
	}
	return legacyIOAddress(f.PM1aControlBlock, f.PM1ControlLength*8)
}

// PM1bControlAddress returns the PM1b Control Block's Generic Address, or
// the zero value if absent.
func (f *FADT) PM1bControlAddress() GenericAddress {
	if f.Ext.PM1bControlBlock.Valid() {
		return f.Ext.PM1bControlBlock
	}
	if f.PM1bControlBlock == 0 {
		return GenericAddress{}
	}
	return legacyIOAddress(f.PM1bControlBlock, f.PM1ControlLength*8)
}

// GPE0BlockAddress returns the GPE0 block's Generic Address and its length
// in bytes, or ok == false if the platform has none.
func (f *FADT) GPE0BlockAddress() (addr GenericAddress, length uint8, ok bool) {
	if f.Ext.GPE0Block.Valid() {
		return f.Ext.GPE0Block, f.GPE0Length, true
	}
	if f.GPE0Block == 0 {
		return GenericAddress{}, 0, false
	}
	return legacyIOAddress(f.GPE0Block, f.GPE0Length*8), f.GPE0Length, true
}

// GPE1BlockAddress returns the GPE1 block's Generic Address and its length
// in bytes, or ok == false if the platform has none.
func (f *FADT) GPE1BlockAddress() (addr GenericAddress, length uint8, ok bool) {
	if f.Ext.GPE1Block.Valid() {
		return f.Ext.GPE1Block, f.GPE1Length, true
	}
	if f.GPE1Block == 0 {
		return GenericAddress{}, 0, false
	}
	return legacyIOAddress(f.GPE1Block, f.GPE1Length*8), f.GPE1Length, true
}
