// Package hosttest provides a recording hal.Platform backed by an
// anonymous mmap region, for use by acpi package tests against spec.md §8's
// "mocked host" scenarios. System memory reads/writes address into the
// mmap'd region directly; I/O ports are a sparse map, since real I/O port
// space has no addressable backing store to mmap.
//
// Grounded on golang.org/x/sys/unix.Mmap usage in
// tinyrange-cc/internal/asm/amd64/exec.go (anonymous PROT_READ|PROT_WRITE
// mapping used as scratch memory for compiled code).
package hosttest

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Call records a single invocation of a Platform method, for assertions
// against spec.md §8's "recording mock" round-trip properties.
type Call struct {
	Op      string
	Address uint64
	Width   uint8
	Value   uint64
}

// Platform is a hal.Platform backed by anonymous-mmap system memory and an
// in-memory I/O port map. The zero value is not usable; construct with New.
type Platform struct {
	mem     []byte
	base    uint64
	ports   map[uint16]uint32
	irqs    []uint32
	Halted  bool
	Calls   []Call
	Stalled time.Duration
}

// New creates a Platform whose system-memory space spans
// [base, base+size). size is rounded up to the host page size by mmap.
func New(base uint64, size int) (*Platform, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap host test memory: %w", err)
	}
	return &Platform{mem: mem, base: base, ports: make(map[uint16]uint32)}, nil
}

// Close releases the backing mapping.
func (p *Platform) Close() error {
	return unix.Munmap(p.mem)
}

func (p *Platform) off(address uint64) int {
	off := address - p.base
	if off >= uint64(len(p.mem)) {
		panic(fmt.Sprintf("hosttest: address %#x out of range [%#x, %#x)", address, p.base, p.base+uint64(len(p.mem))))
	}
	return int(off)
}

func (p *Platform) record(op string, address uint64, width uint8, value uint64) {
	p.Calls = append(p.Calls, Call{Op: op, Address: address, Width: width, Value: value})
}

// IRQs returns the IRQ numbers passed to InstallInterruptHandler, in order.
func (p *Platform) IRQs() []uint32 { return p.irqs }

func (p *Platform) InstallInterruptHandler(irq uint32) error {
	p.irqs = append(p.irqs, irq)
	return nil
}

func (p *Platform) MapSlice(phys, length uint64) []byte {
	off := p.off(phys)
	return p.mem[off : off+int(length)]
}

// SetIOPort pre-seeds an I/O port's value, for tests that need a nonzero
// starting state (e.g. SCI_EN already set).
func (p *Platform) SetIOPort(port uint16, value uint32) {
	p.ports[port] = value
}

func (p *Platform) ReadIOPort8(port uint16) uint8 {
	v := uint8(p.ports[port])
	p.record("io_read8", uint64(port), 8, uint64(v))
	return v
}

func (p *Platform) ReadIOPort16(port uint16) uint16 {
	v := uint16(p.ports[port])
	p.record("io_read16", uint64(port), 16, uint64(v))
	return v
}

func (p *Platform) ReadIOPort32(port uint16) uint32 {
	v := p.ports[port]
	p.record("io_read32", uint64(port), 32, uint64(v))
	return v
}

func (p *Platform) WriteIOPort8(port uint16, value uint8) {
	p.ports[port] = uint32(value)
	p.record("io_write8", uint64(port), 8, uint64(value))
}

func (p *Platform) WriteIOPort16(port uint16, value uint16) {
	p.ports[port] = uint32(value)
	p.record("io_write16", uint64(port), 16, uint64(value))
}

func (p *Platform) WriteIOPort32(port uint16, value uint32) {
	p.ports[port] = value
	p.record("io_write32", uint64(port), 32, uint64(value))
}

func (p *Platform) ReadMemory8(address uint64) uint8 {
	v := p.mem[p.off(address)]
	p.record("mem_read8", address, 8, uint64(v))
	return v
}

func (p *Platform) ReadMemory16(address uint64) uint16 {
	off := p.off(address)
	v := binary.LittleEndian.Uint16(p.mem[off:])
	p.record("mem_read16", address, 16, uint64(v))
	return v
}

func (p *Platform) ReadMemory32(address uint64) uint32 {
	off := p.off(address)
	v := binary.LittleEndian.Uint32(p.mem[off:])
	p.record("mem_read32", address, 32, uint64(v))
	return v
}

func (p *Platform) ReadMemory64(address uint64) uint64 {
	off := p.off(address)
	v := binary.LittleEndian.Uint64(p.mem[off:])
	p.record("mem_read64", address, 64, v)
	return v
}

func (p *Platform) WriteMemory8(address uint64, value uint8) {
	p.mem[p.off(address)] = value
	p.record("mem_write8", address, 8, uint64(value))
}

func (p *Platform) WriteMemory16(address uint64, value uint16) {
	off := p.off(address)
	binary.LittleEndian.PutUint16(p.mem[off:], value)
	p.record("mem_write16", address, 16, uint64(value))
}

func (p *Platform) WriteMemory32(address uint64, value uint32) {
	off := p.off(address)
	binary.LittleEndian.PutUint32(p.mem[off:], value)
	p.record("mem_write32", address, 32, uint64(value))
}

func (p *Platform) WriteMemory64(address uint64, value uint64) {
	off := p.off(address)
	binary.LittleEndian.PutUint64(p.mem[off:], value)
	p.record("mem_write64", address, 64, value)
}

func (p *Platform) Stall(d time.Duration) {
	p.Stalled += d
	p.record("stall", 0, 0, uint64(d))
}

func (p *Platform) FlushCPUCache() {
	p.record("flush_cache", 0, 0, 0)
}

// Halt records the call and returns instead of parking forever, so tests
// exercising acpi.EnterSleepState(S5) can observe the rest of the call
// sequence without hanging.
func (p *Platform) Halt() {
	p.Halted = true
	p.record("halt", 0, 0, 0)
}
