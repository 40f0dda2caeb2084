// Package cfgreg drives the panel configuration shift register.
//
// The register is an 8 bit serial-in, parallel-out latch clocked by three
// GPIO lines: data, clock and strobe. Each bit of the latched byte controls
// one panel line (rails, gate driver mode, start pulse, latch).
//
// The register cannot be read back, so Dev keeps the intended State and every
// write recomputes the whole byte from it.
package cfgreg

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Bit assignments of the latched byte.
const (
	OutputEnable  byte = 1 << 0
	Mode          byte = 1 << 1
	PowerEnable   byte = 1 << 2
	PositiveRail  byte = 1 << 3
	NegativeRail  byte = 1 << 4
	StartVertical byte = 1 << 5
	ScanDirection byte = 1 << 6
	LatchEnable   byte = 1 << 7
)

// State is the intended value of every register line.
//
// The zero value is everything off.
type State struct {
	Output        bool
	Mode          bool
	Power         bool
	Positive      bool
	Negative      bool
	StartVertical bool
	ScanDirection bool
	Latch         bool
}

// Byte encodes s as it is shifted into the register.
func (s State) Byte() byte {
	var b byte
	set := func(on bool, bit byte) {
		if on {
			b |= bit
		}
	}
	set(s.Output, OutputEnable)
	set(s.Mode, Mode)
	set(s.Power, PowerEnable)
	set(s.Positive, PositiveRail)
	set(s.Negative, NegativeRail)
	set(s.StartVertical, StartVertical)
	set(s.ScanDirection, ScanDirection)
	set(s.Latch, LatchEnable)
	return b
}

func (s State) String() string {
	return fmt.Sprintf("cfgreg.State{0x%02X}", s.Byte())
}

// WithPower switches the main supply. Turning it off also drops both rails and
// the output enable.
func (s State) WithPower(on bool) State {
	s.Power = on
	if !on {
		s.Positive = false
		s.Negative = false
		s.Output = false
	}
	return s
}

// WithVoltages sets the positive and negative rails.
//
// Any rail on requires power. Output is only valid with both rails on and is
// cleared otherwise.
func (s State) WithVoltages(pos, neg bool) State {
	if pos || neg {
		s.Power = true
	}
	s.Positive = pos
	s.Negative = neg
	if !pos || !neg {
		s.Output = false
	}
	return s
}

// WithOutput sets the output enable. Enabling it re-asserts power and both
// rails; disabling it leaves them as they are.
func (s State) WithOutput(on bool) State {
	if on {
		s.Power = true
		s.Positive = true
		s.Negative = true
	}
	s.Output = on
	return s
}

// WithMode sets the gate driver mode line.
func (s State) WithMode(on bool) State {
	s.Mode = on
	return s
}

// WithStartVertical sets the STV line.
func (s State) WithStartVertical(on bool) State {
	s.StartVertical = on
	return s
}

// WithScanDirection sets the scan direction line.
func (s State) WithScanDirection(on bool) State {
	s.ScanDirection = on
	return s
}

// WithLatch sets the latch enable line.
func (s State) WithLatch(on bool) State {
	s.Latch = on
	return s
}

// Dev is a handle to the shift register.
type Dev struct {
	data gpio.PinOut
	clk  gpio.PinOut
	str  gpio.PinOut

	state  State
	writes int
}

// New initializes the register lines and clears the register.
//
// Data is driven low, clock high and strobe low before 0x00 is shifted in.
func New(data, clk, str gpio.PinOut) (*Dev, error) {
	if data == nil || clk == nil || str == nil {
		return nil, errors.New("cfgreg: nil pin")
	}
	d := &Dev{data: data, clk: clk, str: str}
	if err := d.data.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("cfgreg: data: %w", err)
	}
	if err := d.clk.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("cfgreg: clock: %w", err)
	}
	if err := d.str.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("cfgreg: strobe: %w", err)
	}
	if err := d.Set(State{}); err != nil {
		return nil, err
	}
	return d, nil
}

// State returns the last successfully written state.
func (d *Dev) State() State {
	return d.state
}

// Writes returns the number of complete writes since New.
func (d *Dev) Writes() int {
	return d.writes
}

// Apply computes the next state from the current one and writes it.
//
// The stored state only changes if the write succeeds.
func (d *Dev) Apply(f func(State) State) error {
	return d.Set(f(d.state))
}

// Set writes s and records it as the current state on success.
func (d *Dev) Set(s State) error {
	if err := d.Write(s.Byte()); err != nil {
		return err
	}
	d.state = s
	return nil
}

// Write shifts b into the register, most significant bit first, and latches
// it.
//
// Write does not update State; use Set or Apply for that.
func (d *Dev) Write(b byte) error {
	if err := d.str.Out(gpio.Low); err != nil {
		return fmt.Errorf("cfgreg: strobe: %w", err)
	}
	for i := 7; i >= 0; i-- {
		if err := d.clk.Out(gpio.Low); err != nil {
			return fmt.Errorf("cfgreg: clock: %w", err)
		}
		if err := d.data.Out(gpio.Level(b&(1<<uint(i)) != 0)); err != nil {
			return fmt.Errorf("cfgreg: data: %w", err)
		}
		if err := d.clk.Out(gpio.High); err != nil {
			return fmt.Errorf("cfgreg: clock: %w", err)
		}
	}
	if err := d.str.Out(gpio.High); err != nil {
		return fmt.Errorf("cfgreg: strobe: %w", err)
	}
	d.writes++
	return nil
}

// String implements fmt.Stringer.
func (d *Dev) String() string {
	return fmt.Sprintf("cfgreg.Dev{%s, %s, %s}", d.data, d.clk, d.str)
}
