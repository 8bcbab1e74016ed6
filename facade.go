// Package acpi mediates between firmware ACPI tables, the platform's ACPI
// hardware registers, and an AML bytecode interpreter: bringing the
// platform into ACPI mode, servicing fixed and general-purpose events, and
// driving sleep-state transitions.
package acpi

import (
	"encoding/binary"

	"github.com/alnyan/acpi-system/aml"
	"github.com/alnyan/acpi-system/hal"
	"github.com/alnyan/acpi-system/internal/klog"
	"github.com/alnyan/acpi-system/internal/ksync"
	"github.com/alnyan/acpi-system/table"
)

// sdtHeaderLength is the size of the common ACPI table header every
// DSDT/SSDT starts with: enough to read Length before mapping the rest.
const sdtHeaderLength = 36

// AcpiInterruptMethod selects the interrupt model announced to the
// firmware through \_PIC.
type AcpiInterruptMethod uint8

const (
	InterruptMethodPic AcpiInterruptMethod = iota
	InterruptMethodApic
	InterruptMethodSApic
)

const pathPic = `\_PIC`

// AcpiSystem is the Facade: it owns the AML context, the mapped FADT, the
// cached PM1 address set, the GPE blocks, and the fixed-event handler
// table. Constructed once from parsed tables; mutated only through its own
// methods; lives until system power-off (spec.md §3).
type AcpiSystem struct {
	platform   hal.Platform
	amlContext aml.Context
	fadt       *table.FADT

	pm1aStatus, pm1bStatus table.GenericAddress
	pm1aEnable, pm1bEnable table.GenericAddress
	hasPm1b                bool

	gpe0Block *GpeBlock
	gpe1Block *GpeBlock

	handlerLock ksync.Spinlock
	handlers    [eventHandlerCount]EventHandler
}

// New maps the FADT's PM1 address set once and builds the Facade. No
// hardware side effects occur until Initialize is called.
func New(platform hal.Platform, amlContext aml.Context, fadt *table.FADT) *AcpiSystem {
	sys := &AcpiSystem{
		platform:   platform,
		amlContext: amlContext,
		fadt:       fadt,
	}

	sys.pm1aStatus = fadt.PM1aStatusAddress()
	sys.pm1aEnable = fadt.PM1aEnableAddress()
	sys.pm1bStatus = fadt.PM1bStatusAddress()
	if sys.pm1bStatus.Valid() {
		sys.pm1bEnable = fadt.PM1bEnableAddress()
		sys.hasPm1b = true
	}

	return sys
}

// Initialize brings the platform into ACPI mode, maps and loads the DSDT,
// programs event hardware, and announces the interrupt model, in the order
// spec.md §4.6 mandates.
func (sys *AcpiSystem) Initialize(interruptMethod AcpiInterruptMethod) error {
	if err := sys.EnableAcpi(); err != nil {
		return err
	}

	if err := sys.loadDsdt(); err != nil {
		return err
	}

	if err := sys.InitializeEvents(); err != nil {
		return err
	}

	if err := sys.amlContext.InitializeObjects(); err != nil {
		return wrapError(AmlError, "initialize objects", err)
	}

	return sys.configureInterruptMethod(interruptMethod)
}

// loadDsdt locates the DSDT through the FADT, maps its header to learn the
// table's length, then maps and parses the full table. A platform with no
// DSDT address set (hardware-reduced or incomplete firmware) is not an
// error: nothing gets parsed into the AML context.
func (sys *AcpiSystem) loadDsdt() error {
	address, ok := sys.fadt.DsdtAddress()
	if !ok {
		return nil
	}

	header := sys.platform.MapSlice(address, sdtHeaderLength)
	if len(header) < sdtHeaderLength {
		return newError(TableError, "DSDT header mapping too short")
	}
	length := binary.LittleEndian.Uint32(header[4:8])

	dsdt := sys.platform.MapSlice(address, uint64(length))
	if err := sys.amlContext.ParseTable(dsdt); err != nil {
		klog.Error("acpi", "could not parse DSDT: %s", err.Error())
		return wrapError(AmlError, "parse DSDT", err)
	}
	return nil
}

func (sys *AcpiSystem) configureInterruptMethod(interruptMethod AcpiInterruptMethod) error {
	args := aml.IntArgs(uint64(interruptMethod))
	return sys.invokeOptionalMethod(pathPic, args)
}

// HandleSci services the SCI interrupt: it dispatches fixed events and
// swallows any error, since interrupt context must not propagate failures
// to the CPU (spec.md §4.6, §7). GPE dispatch beyond initialization is a
// declared extension point.
func (sys *AcpiSystem) HandleSci() {
	if err := sys.HandleFixedEventSci(); err != nil {
		klog.Warn("acpi", "handle SCI: %s", err.Error())
	}
}

// Gpe0Block returns the initialized GPE0 block, or nil if the platform has
// none.
func (sys *AcpiSystem) Gpe0Block() *GpeBlock { return sys.gpe0Block }

// Gpe1Block returns the initialized GPE1 block, or nil if the platform has
// none.
func (sys *AcpiSystem) Gpe1Block() *GpeBlock { return sys.gpe1Block }
