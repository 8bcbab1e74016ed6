package hosttest

import "testing"

func TestIOPortRoundTrip(t *testing.T) {
	p, err := New(0, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	p.WriteIOPort8(0xB2, 0xA1)
	if got := p.ReadIOPort8(0xB2); got != 0xA1 {
		t.Fatalf("got %#x, want 0xA1", got)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	p, err := New(0x1000, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	p.WriteMemory32(0x1004, 0xdeadbeef)
	if got := p.ReadMemory32(0x1004); got != 0xdeadbeef {
		t.Fatalf("got %#x, want 0xdeadbeef", got)
	}
}

func TestCallLogRecordsOperations(t *testing.T) {
	p, err := New(0, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	p.WriteIOPort8(0xB2, 0xA1)
	p.ReadIOPort8(0xB2)

	if len(p.Calls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(p.Calls))
	}
	if p.Calls[0].Op != "io_write8" || p.Calls[0].Value != 0xA1 {
		t.Fatalf("unexpected first call: %+v", p.Calls[0])
	}
}

func TestHaltRecordsInsteadOfBlocking(t *testing.T) {
	p, err := New(0, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	p.Halt()
	if !p.Halted {
		t.Fatal("expected Halted to be set")
	}
}
