// Package hal declares the host platform boundary: the set of callbacks the
// acpi package needs from the kernel it runs in (port and memory I/O,
// interrupt registration, stall, cache control, halt). spec.md §1 calls
// this an external collaborator; this package is its contract, not an
// implementation — architecture-specific bodies belong to the embedding
// kernel, not here. hal/hosttest supplies a byte-array-backed one for tests.
package hal

import "time"

// Platform is the capability set the acpi package requires from its host,
// per spec.md §6. All methods must be safe to call from SCI interrupt
// context except where noted.
type Platform interface {
	// InstallInterruptHandler routes the given IRQ to the SCI dispatcher.
	// Called once during Facade.Initialize, never from interrupt context.
	InstallInterruptHandler(irq uint32) error

	// MapSlice maps length bytes at the given physical address and returns
	// them as a byte slice valid for the lifetime of the platform. Used
	// only to hand DSDT/SSDT bytes to the AML parser.
	MapSlice(phys, length uint64) []byte

	ReadIOPort8(port uint16) uint8
	ReadIOPort16(port uint16) uint16
	ReadIOPort32(port uint16) uint32

	WriteIOPort8(port uint16, value uint8)
	WriteIOPort16(port uint16, value uint16)
	WriteIOPort32(port uint16, value uint32)

	ReadMemory8(address uint64) uint8
	ReadMemory16(address uint64) uint16
	ReadMemory32(address uint64) uint32
	ReadMemory64(address uint64) uint64

	WriteMemory8(address uint64, value uint8)
	WriteMemory16(address uint64, value uint16)
	WriteMemory32(address uint64, value uint32)
	WriteMemory64(address uint64, value uint64)

	// Stall blocks the calling context for approximately d. Only called
	// from SetAcpiMode's enable poll, never from interrupt context.
	Stall(d time.Duration)

	// FlushCPUCache performs a write-back-invalidate of the CPU cache
	// (wbinvd on x86). Called once per sleep transition, just before the
	// SLP_EN write.
	FlushCPUCache()

	// Halt disables interrupts and parks the CPU forever. Never returns.
	Halt()
}
