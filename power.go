package epd47

import (
	"time"

	"github.com/flavioheleno/epd47/cfgreg"
)

// PowerState is the state of the panel supply rails.
type PowerState int

const (
	// PowerOff is the initial state: every rail is down.
	PowerOff PowerState = iota
	// PowerOn means every rail is up and the output is enabled.
	PowerOn
	// PowerUnknown follows a power sequence that failed part way. Both
	// PowerOn and PowerOff run their full sequence from this state.
	PowerUnknown
)

func (s PowerState) String() string {
	switch s {
	case PowerOff:
		return "Off"
	case PowerOn:
		return "On"
	case PowerUnknown:
		return "Unknown"
	}
	return "PowerState(?)"
}

// powerStep switches one rail group and waits for it to settle.
type powerStep struct {
	name   string
	set    func(s cfgreg.State, on bool) cfgreg.State
	settle time.Duration
}

// powerSteps is the power-up order. Power-down runs it backwards with every
// step switched off.
var powerSteps = []powerStep{
	{
		name:   "power",
		set:    cfgreg.State.WithPower,
		settle: 10 * time.Millisecond,
	},
	{
		name:   "voltages",
		set:    func(s cfgreg.State, on bool) cfgreg.State { return s.WithVoltages(on, on) },
		settle: 20 * time.Millisecond,
	},
	{
		name:   "output",
		set:    cfgreg.State.WithOutput,
		settle: 5 * time.Millisecond,
	},
}

// transition is one step of a power sequence, resolved for a direction.
type transition struct {
	name   string
	apply  func(cfgreg.State) cfgreg.State
	settle time.Duration
}

func powerSequence(on bool) []transition {
	seq := make([]transition, 0, len(powerSteps))
	for i := range powerSteps {
		st := powerSteps[i]
		if !on {
			st = powerSteps[len(powerSteps)-1-i]
		}
		seq = append(seq, transition{
			name:   st.name,
			apply:  func(s cfgreg.State) cfgreg.State { return st.set(s, on) },
			settle: st.settle,
		})
	}
	return seq
}

// invalidator is implemented by row buses that skip repeated rows.
type invalidator interface {
	Invalidate()
}

// Power returns the current power state.
func (d *Dev) Power() PowerState {
	return d.power
}

// PowerOn brings the rails up in order: main supply, then both voltage rails,
// then the output enable. It does nothing when the panel is already on.
func (d *Dev) PowerOn() error {
	return d.powerOn(d.delay)
}

func (d *Dev) powerOn(delay Delayer) error {
	if d.power == PowerOn {
		return nil
	}
	d.log.Info("powering on")
	return d.runPower(true, delay)
}

// PowerOff brings the rails down in the reverse order of PowerOn. It does
// nothing when the panel is already off.
//
// An outstanding pulse is completed first. If that fails the rails are still
// brought down and the pulse error is returned.
func (d *Dev) PowerOff() error {
	return d.powerOff(d.delay)
}

func (d *Dev) powerOff(delay Delayer) error {
	if d.power == PowerOff {
		return nil
	}
	d.log.Info("powering off")
	var reclaimErr error
	if err := d.pulser.Reclaim(); err != nil {
		reclaimErr = &PeripheralError{Op: "pulse", Err: err}
	}
	if err := d.runPower(false, delay); err != nil {
		return err
	}
	return reclaimErr
}

// runPower applies the sequence for on, settling with delay after each step.
// The row bus forgets its last row first.
func (d *Dev) runPower(on bool, delay Delayer) error {
	if inv, ok := d.bus.(invalidator); ok {
		inv.Invalidate()
	}
	for _, t := range powerSequence(on) {
		if err := d.reg.Apply(t.apply); err != nil {
			d.power = PowerUnknown
			d.log.WithError(err).Errorf("power sequence failed at %s", t.name)
			return &PeripheralError{Op: "power " + t.name, Err: err}
		}
		d.log.Debugf("%s %t, register 0x%02X", t.name, on, d.reg.State().Byte())
		delay.Delay(t.settle)
	}
	if on {
		d.power = PowerOn
	} else {
		d.power = PowerOff
	}
	return nil
}
