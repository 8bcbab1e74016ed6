package acpi

import (
	"github.com/alnyan/acpi-system/table"
)

// gpeRegisterWidth is the number of GPE bits per status/enable byte (each
// GPE register is one byte, per spec.md §4.4).
const gpeRegisterWidth = 8

// EventHandlerId identifies one of the five fixed events a handler can be
// installed against.
type EventHandlerId uint8

const (
	EventTimer EventHandlerId = iota
	EventGlobalLock
	EventPowerButton
	EventSleepButton
	EventRtc
	eventHandlerCount
)

// FixedEvent names one of the five fixed ACPI events: its enable/status bit
// positions (both within PM1 Enable/Status) and the handler id it dispatches
// to.
type FixedEvent struct {
	Name           string
	EnableRegister BitRegister
	StatusRegister BitRegister
	HandlerId      EventHandlerId
}

// The five fixed events, in the order the SCI dispatcher visits them
// (spec.md §3, §5).
var (
	FixedEventTimer = FixedEvent{
		Name:           "Timer",
		EnableRegister: BitRegister{Parent: Pm1Enable, Position: 0},
		StatusRegister: BitRegister{Parent: Pm1Status, Position: 0},
		HandlerId:      EventTimer,
	}
	FixedEventGlobalLock = FixedEvent{
		Name:           "Global Lock",
		EnableRegister: BitRegister{Parent: Pm1Enable, Position: 5},
		StatusRegister: BitRegister{Parent: Pm1Status, Position: 5},
		HandlerId:      EventGlobalLock,
	}
	FixedEventPowerButton = FixedEvent{
		Name:           "Power Button",
		EnableRegister: BitRegister{Parent: Pm1Enable, Position: 8},
		StatusRegister: BitRegister{Parent: Pm1Status, Position: 8},
		HandlerId:      EventPowerButton,
	}
	FixedEventSleepButton = FixedEvent{
		Name:           "Sleep Button",
		EnableRegister: BitRegister{Parent: Pm1Enable, Position: 9},
		StatusRegister: BitRegister{Parent: Pm1Status, Position: 9},
		HandlerId:      EventSleepButton,
	}
	FixedEventRtc = FixedEvent{
		Name:           "RTC",
		EnableRegister: BitRegister{Parent: Pm1Enable, Position: 10},
		StatusRegister: BitRegister{Parent: Pm1Status, Position: 10},
		HandlerId:      EventRtc,
	}
)

// fixedEventList is the declared dispatch order: Timer, Global Lock, Power
// Button, Sleep Button, RTC.
var fixedEventList = []FixedEvent{
	FixedEventTimer,
	FixedEventGlobalLock,
	FixedEventPowerButton,
	FixedEventSleepButton,
	FixedEventRtc,
}

// EventAction is what a fixed-event handler returns. Handlers cannot mutate
// the Facade directly (spec.md §9) — they run from SCI context and return a
// value describing what the Facade should do next.
type EventAction struct {
	kind       eventActionKind
	sleepState AcpiSleepState
}

type eventActionKind uint8

const (
	eventActionNothing eventActionKind = iota
	eventActionEnterSleepState
)

// NothingAction is the zero EventAction: the handler requests no follow-up.
var NothingAction = EventAction{kind: eventActionNothing}

// EnterSleepStateAction requests that the Facade transition into s once the
// current SCI dispatch completes.
func EnterSleepStateAction(s AcpiSleepState) EventAction {
	return EventAction{kind: eventActionEnterSleepState, sleepState: s}
}

// EventHandler is invoked from SCI context with a read-only view of the
// system and must not block.
type EventHandler func(sys *AcpiSystem) EventAction

// GpeRegisterInfo is one status/enable register pair within a GPE block.
type GpeRegisterInfo struct {
	BaseGpeNumber   uint16
	StatusRegister  table.GenericAddress
	EnableRegister  table.GenericAddress
}

// GpeEventInfo identifies a single GPE bit's position within its block.
type GpeEventInfo struct {
	GpeNumber     uint16
	RegisterIndex int
}

// GpeBlock describes one GPE block's register layout, per spec.md §3's
// invariants: len(EventInfo) == GpeCount, and EventInfo[i].GpeNumber ==
// RegisterInfo[EventInfo[i].RegisterIndex].BaseGpeNumber + (i mod 8).
type GpeBlock struct {
	RegisterInfo []GpeRegisterInfo
	EventInfo    []GpeEventInfo
	GpeCount     int
}

// initializeGpeBlock builds a GpeBlock for a block of registerCount
// register pairs starting at blockBaseNumber, disabling every GPE and
// clearing any pending status (spec.md §4.4).
func (sys *AcpiSystem) initializeGpeBlock(blockAddress table.GenericAddress, registerCount int, blockBaseNumber uint16) (*GpeBlock, error) {
	block := &GpeBlock{GpeCount: registerCount * gpeRegisterWidth}

	for i := 0; i < registerCount; i++ {
		baseGpeNumber := blockBaseNumber + uint16(i*gpeRegisterWidth)

		statusRegister := table.GenericAddress{
			Space:    blockAddress.Space,
			Address:  blockAddress.Address + uint64(i),
			BitWidth: gpeRegisterWidth,
		}
		enableRegister := table.GenericAddress{
			Space:    blockAddress.Space,
			Address:  blockAddress.Address + uint64(i) + uint64(registerCount),
			BitWidth: gpeRegisterWidth,
		}

		for j := 0; j < gpeRegisterWidth; j++ {
			block.EventInfo = append(block.EventInfo, GpeEventInfo{
				GpeNumber:     baseGpeNumber + uint16(j),
				RegisterIndex: i,
			})
		}

		if err := sys.writeAddress(enableRegister, 0x00); err != nil {
			return nil, err
		}
		if err := sys.writeAddress(statusRegister, 0xFF); err != nil {
			return nil, err
		}

		block.RegisterInfo = append(block.RegisterInfo, GpeRegisterInfo{
			BaseGpeNumber:  baseGpeNumber,
			StatusRegister: statusRegister,
			EnableRegister: enableRegister,
		})
	}

	return block, nil
}

func (sys *AcpiSystem) disableFixedEvents() error {
	for _, event := range fixedEventList {
		if err := event.EnableRegister.Set(sys, false); err != nil {
			return err
		}
	}
	return nil
}

func (sys *AcpiSystem) initializeFixedEvents() error {
	return sys.disableFixedEvents()
}

func (sys *AcpiSystem) initializeGpes() error {
	if addr, length, ok := sys.fadt.GPE0BlockAddress(); ok {
		registerCount := int(length) / 2
		block, err := sys.initializeGpeBlock(addr, registerCount, 0)
		if err != nil {
			return err
		}
		sys.gpe0Block = block
	}

	// GPE1 is initialized exactly like GPE0 (same data model, GPEs
	// disabled and pending status cleared), numbered from FADT.GPE1Base.
	// Neither block's GPEs are dispatched by HandleSci.
	if addr, length, ok := sys.fadt.GPE1BlockAddress(); ok {
		registerCount := int(length) / 2
		block, err := sys.initializeGpeBlock(addr, registerCount, uint16(sys.fadt.GPE1Base))
		if err != nil {
			return err
		}
		sys.gpe1Block = block
	}

	return nil
}

// InitializeEvents disables all fixed events, builds the GPE blocks, and
// installs the SCI interrupt handler, in that order (spec.md §4.4).
func (sys *AcpiSystem) InitializeEvents() error {
	if err := sys.initializeFixedEvents(); err != nil {
		return err
	}
	if err := sys.initializeGpes(); err != nil {
		return err
	}
	if err := sys.platform.InstallInterruptHandler(uint32(sys.fadt.SCIInterrupt)); err != nil {
		return wrapError(TableError, "install SCI interrupt handler", err)
	}
	return nil
}

// EnableFixedEvent installs handler at event.HandlerId and sets the event's
// enable bit. Handler installation happens before the enable bit is set, so
// a pending event can never arrive without a handler (spec.md §4.4's
// invariant).
func (sys *AcpiSystem) EnableFixedEvent(event FixedEvent, handler EventHandler) error {
	sys.handlerLock.Acquire()
	sys.handlers[event.HandlerId] = handler
	sys.handlerLock.Release()

	return event.EnableRegister.Set(sys, true)
}

// HandleFixedEventSci reads PM1 Status and PM1 Enable, and for every fixed
// event with both bits set, acknowledges the event and dispatches its
// handler's EventAction (spec.md §4.4).
func (sys *AcpiSystem) HandleFixedEventSci() error {
	fixedStatus, err := sys.ReadRegister(Pm1Status)
	if err != nil {
		return err
	}
	fixedEnable, err := sys.ReadRegister(Pm1Enable)
	if err != nil {
		return err
	}

	for _, event := range fixedEventList {
		if !event.EnableRegister.GetFromRaw(fixedEnable) || !event.StatusRegister.GetFromRaw(fixedStatus) {
			continue
		}

		// Acknowledge with a read-modify-write of PM1 Status that sets this
		// event's status bit; the write also carries every other status bit
		// that read back as set (BM_STS excepted).
		event.StatusRegister.Set(sys, true)

		sys.handlerLock.Acquire()
		handler := sys.handlers[event.HandlerId]
		sys.handlerLock.Release()

		if handler != nil {
			sys.HandleEventAction(handler(sys))
		}
	}

	return nil
}

// ClearFixedEvents clears every currently-set fixed event status bit in one
// write, preserving every other bit in PM1 Status (spec.md §4.5 step 1).
func (sys *AcpiSystem) ClearFixedEvents() error {
	value, err := sys.ReadRegister(Pm1Status)
	if err != nil {
		return err
	}

	var mask uint32
	for _, event := range fixedEventList {
		if event.StatusRegister.GetFromRaw(value) {
			mask = event.StatusRegister.SetRaw(mask, true)
		}
	}
	return sys.WriteRegister(Pm1Status, mask)
}
