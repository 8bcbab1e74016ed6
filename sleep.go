package acpi

import (
	"fmt"

	"github.com/alnyan/acpi-system/aml"
	"github.com/alnyan/acpi-system/internal/klog"
)

// AcpiSleepState enumerates the ACPI sleep states, per spec.md §3.
type AcpiSleepState uint8

const (
	S0 AcpiSleepState = iota
	S1
	S2
	S3
	S4
	S5
)

// sleepStateNames maps AcpiSleepState to its \_Sx namespace path.
var sleepStateNames = []string{`\_S0_`, `\_S1_`, `\_S2_`, `\_S3_`, `\_S4_`, `\_S5_`}

const (
	pathPrepareToSleep = `\_PTS`
	pathSystemStatus   = `\_SI._SST`
)

// _SST indicator values, per the ACPI spec (spec.md §9's open-question
// resolution: the source leaves these as unimplemented TODOs; this
// implementation supplies them instead of perpetuating the gap).
const (
	sstIndicatorOff      = 0
	sstIndicatorWorking  = 1
	sstIndicatorSleeping = 3
)

func sstIndicatorFor(state AcpiSleepState) (value uint64, skip bool) {
	switch state {
	case S0:
		return sstIndicatorWorking, false
	case S1, S2, S3, S4:
		return sstIndicatorSleeping, false
	case S5:
		return sstIndicatorOff, false
	default:
		return 0, true
	}
}

func (sys *AcpiSystem) sleepTypeData(state AcpiSleepState) (uint8, uint8, error) {
	if int(state) >= len(sleepStateNames) {
		return 0, 0, newError(InvalidSleepMethod, fmt.Sprintf("sleep state %d out of range", state))
	}

	path := sleepStateNames[state]
	info, err := sys.amlContext.Lookup(path)
	if err != nil {
		if aml.IsNotFound(err) {
			return 0, 0, wrapError(MissingSleepMethod, path, err)
		}
		return 0, 0, wrapError(AmlError, path, err)
	}

	if info.Kind != aml.KindPackage {
		return 0, 0, newError(InvalidSleepMethod, fmt.Sprintf("%s did not evaluate to a Package", path))
	}

	switch len(info.Package) {
	case 0, 1:
		return 0, 0, newError(InvalidSleepMethod, fmt.Sprintf("%s has %d elements, need at least 2", path, len(info.Package)))
	default:
		a, err := info.Package[0].AsInteger()
		if err != nil {
			return 0, 0, wrapError(InvalidSleepMethod, path, err)
		}
		b, err := info.Package[1].AsInteger()
		if err != nil {
			return 0, 0, wrapError(InvalidSleepMethod, path, err)
		}
		return uint8(a), uint8(b), nil
	}
}

// invokeOptionalMethod invokes an AML control method whose absence is
// non-fatal (spec.md §7): \_PTS, \_SI._SST, \_PIC all fall into this
// category. Any AML error other than "does not exist" propagates as an
// AmlError.
func (sys *AcpiSystem) invokeOptionalMethod(path string, args aml.Args) error {
	_, err := sys.amlContext.InvokeMethod(path, args)
	if err == nil {
		return nil
	}
	if aml.IsNotFound(err) {
		klog.Warn("acpi", "%s: %s", path, err.Error())
		return nil
	}
	return wrapError(AmlError, path, err)
}

// PrepareSleepState evaluates \_Sx to obtain (SLP_TYPa, SLP_TYPb), then runs
// \_PTS and \_SI._SST (spec.md §4.5).
func (sys *AcpiSystem) PrepareSleepState(state AcpiSleepState) (uint8, uint8, error) {
	sleepTypeA, sleepTypeB, err := sys.sleepTypeData(state)
	if err != nil {
		return 0, 0, err
	}

	ptsArgs := aml.IntArgs(uint64(state))
	if err := sys.invokeOptionalMethod(pathPrepareToSleep, ptsArgs); err != nil {
		return 0, 0, err
	}

	if sstValue, skip := sstIndicatorFor(state); !skip {
		sstArgs := aml.IntArgs(sstValue)
		if err := sys.invokeOptionalMethod(pathSystemStatus, sstArgs); err != nil {
			return 0, 0, err
		}
	}

	return sleepTypeA, sleepTypeB, nil
}

// acpiHwLegacySleep runs the nine-step hardware sleep sequence, exactly in
// the order spec.md §4.5 mandates. It never returns for S5: the platform
// halts at the end of the sequence.
func (sys *AcpiSystem) acpiHwLegacySleep(sleepTypeA, sleepTypeB uint8) error {
	// 1. Clear all fixed-event status bits.
	if err := sys.ClearFixedEvents(); err != nil {
		return err
	}

	// 2. Set WAKE_STATUS.
	if err := WakeStatus.Set(sys, true); err != nil {
		return err
	}

	// 3. Read PM1 Control.
	control, err := sys.ReadRegister(Pm1Control)
	if err != nil {
		return err
	}

	// 4. Clear SLEEP_ENABLE.
	control = SleepEnable.SetRaw(control, false)

	// 5. Splice in SLP_TYP for each half.
	controlA := SleepType.SetRaw(control, uint32(sleepTypeA))
	controlB := SleepType.SetRaw(control, uint32(sleepTypeB))

	// 6. Write SLP_TYP with SLEEP_ENABLE still clear.
	if err := sys.WritePm1Control(controlA, controlB); err != nil {
		return err
	}

	// 7. Flush CPU cache before asserting SLEEP_ENABLE.
	sys.platform.FlushCPUCache()

	// 8. Write again with SLEEP_ENABLE set.
	if err := sys.WritePm1Control(SleepEnable.SetRaw(controlA, true), SleepEnable.SetRaw(controlB, true)); err != nil {
		return err
	}

	// 9. Halt forever.
	sys.platform.Halt()
	return nil
}

// DispatchSleepCommand validates SLP_TYPa/b fit in the 3-bit field and
// runs the legacy sleep sequence (spec.md §4.5).
func (sys *AcpiSystem) DispatchSleepCommand(sleepTypeA, sleepTypeB uint8) error {
	if sleepTypeA > 7 || sleepTypeB > 7 {
		return newError(InvalidSleepValues, fmt.Sprintf("a=%d b=%d", sleepTypeA, sleepTypeB))
	}
	return sys.acpiHwLegacySleep(sleepTypeA, sleepTypeB)
}

// EnterSleepState prepares and performs a transition into state. It may
// never return (S5) or return with the system in an altered power state.
func (sys *AcpiSystem) EnterSleepState(state AcpiSleepState) error {
	klog.Info("acpi", "entering sleep state %d", uint8(state))

	sleepTypeA, sleepTypeB, err := sys.PrepareSleepState(state)
	if err != nil {
		return err
	}
	return sys.DispatchSleepCommand(sleepTypeA, sleepTypeB)
}

// HandleEventAction dispatches an EventAction returned by a fixed-event
// handler.
func (sys *AcpiSystem) HandleEventAction(action EventAction) {
	switch action.kind {
	case eventActionNothing:
		return
	case eventActionEnterSleepState:
		if err := sys.EnterSleepState(action.sleepState); err != nil {
			klog.Warn("acpi", "enter sleep state: %s", err.Error())
		}
	}
}
