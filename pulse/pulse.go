// Package pulse emits timed high/low pulses on the panel clock line.
//
// The pulses are produced by a pulse-train transmitter, modelled after
// micro-controller remote control peripherals: a Peripheral binds a pin to a
// Channel, a Channel transmits a program of Code entries and hands itself over
// to the returned Transmission until the program completes.
//
// Pulser owns the single channel used by the panel and tracks whether it is
// currently held or lent to an outstanding transmission.
package pulse

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

var (
	// ErrChannelOwnership is returned when a transmission is attempted while
	// the channel is not held.
	ErrChannelOwnership = errors.New("pulse: channel not owned")
	// ErrInternal is returned when a completed transmission did not hand the
	// channel back.
	ErrInternal = errors.New("pulse: channel lost after transmission")
)

// HardwareError reports a failure of the underlying transmitter.
type HardwareError struct {
	Op  string
	Err error
}

func (e *HardwareError) Error() string {
	return fmt.Sprintf("pulse: %s: %v", e.Op, e.Err)
}

func (e *HardwareError) Unwrap() error {
	return e.Err
}

// Code is one entry of a pulse program: Level0 for Length0 ticks followed by
// Level1 for Length1 ticks.
type Code struct {
	Level0  bool
	Length0 uint16
	Level1  bool
	Length1 uint16
}

// End terminates a pulse program.
var End = Code{}

// IsEnd reports whether c terminates a program.
func (c Code) IsEnd() bool {
	return c.Length0 == 0 && c.Length1 == 0
}

// Program returns the two entry program for a pulse of high ticks high
// followed by low ticks low.
//
// A zero high produces the low-only variant: a single high phase lasting low
// ticks.
func Program(high, low uint16) []Code {
	if high > 0 {
		return []Code{{Level0: true, Length0: high, Level1: false, Length1: low}, End}
	}
	return []Code{{Level0: true, Length0: low, Level1: false, Length1: 0}, End}
}

// Config is the transmitter clock configuration.
type Config struct {
	Source       physic.Frequency
	ClockDivider uint8
	IdleLevel    gpio.Level
}

// DefaultConfig is an 80MHz source divided by 8, idling low. One tick is
// 100ns.
var DefaultConfig = Config{
	Source:       80 * physic.MegaHertz,
	ClockDivider: 8,
	IdleLevel:    gpio.Low,
}

// Tick returns the duration of one tick.
func (c Config) Tick() time.Duration {
	return (c.Source / physic.Frequency(c.ClockDivider)).Period()
}

func (c Config) validate() error {
	if c.Source <= 0 {
		return errors.New("pulse: source frequency must be positive")
	}
	if c.ClockDivider == 0 {
		return errors.New("pulse: clock divider must be at least 1")
	}
	return nil
}

// Peripheral configures channels on output pins.
type Peripheral interface {
	Configure(p gpio.PinOut, cfg Config) (Channel, error)
}

// Channel transmits pulse programs.
//
// The channel is handed over to the Transmission; it must not be used again
// until Wait returns it.
type Channel interface {
	Transmit(codes []Code) (Transmission, error)
}

// Transmission is a program in flight.
type Transmission interface {
	// Wait blocks until the program completes and returns the channel.
	Wait() (Channel, error)
}

// Pulser emits pulses on a single pin, acquiring the channel lazily.
//
// Pulser is not safe for concurrent use.
type Pulser struct {
	periph Peripheral
	pin    gpio.PinOut
	cfg    Config

	ch      Channel
	pending Transmission
}

// New returns a Pulser. No hardware is touched until the first Pulse.
func New(periph Peripheral, pin gpio.PinOut, cfg *Config) (*Pulser, error) {
	if periph == nil {
		return nil, errors.New("pulse: nil peripheral")
	}
	if pin == nil {
		return nil, errors.New("pulse: nil pin")
	}
	c := DefaultConfig
	if cfg != nil {
		c = *cfg
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &Pulser{periph: periph, pin: pin, cfg: c}, nil
}

// Config returns the clock configuration used for the channel.
func (p *Pulser) Config() Config {
	return p.cfg
}

// Owned reports whether the channel is held and ready for a transmission.
func (p *Pulser) Owned() bool {
	return p.ch != nil
}

// Outstanding reports whether a non-waiting transmission still holds the
// channel.
func (p *Pulser) Outstanding() bool {
	return p.pending != nil
}

// Pulse transmits a pulse of high ticks high followed by low ticks low. See
// Program for the high == 0 case.
//
// With wait, Pulse blocks until the pulse completes and keeps the channel for
// the next call. Without it, Pulse returns as soon as the transmission has
// started and the channel stays with the transmission; the next Pulse or
// Reclaim takes it back.
func (p *Pulser) Pulse(high, low uint16, wait bool) error {
	if err := p.acquire(); err != nil {
		return err
	}
	ch := p.ch
	if ch == nil {
		return ErrChannelOwnership
	}
	p.ch = nil
	tx, err := ch.Transmit(Program(high, low))
	if err != nil {
		return &HardwareError{Op: "transmit", Err: err}
	}
	if !wait {
		p.pending = tx
		return nil
	}
	return p.complete(tx)
}

// Reclaim blocks on the outstanding transmission, if any, and puts the
// channel back in the slot.
func (p *Pulser) Reclaim() error {
	if p.pending == nil {
		return nil
	}
	tx := p.pending
	p.pending = nil
	return p.complete(tx)
}

// acquire makes sure the slot holds a channel: it takes it back from an
// outstanding transmission, or configures one on first use.
func (p *Pulser) acquire() error {
	if err := p.Reclaim(); err != nil {
		return err
	}
	if p.ch != nil {
		return nil
	}
	ch, err := p.periph.Configure(p.pin, p.cfg)
	if err != nil {
		return &HardwareError{Op: "configure", Err: err}
	}
	p.ch = ch
	return nil
}

func (p *Pulser) complete(tx Transmission) error {
	ch, err := tx.Wait()
	if err != nil {
		return &HardwareError{Op: "wait", Err: err}
	}
	if ch == nil {
		return ErrInternal
	}
	p.ch = ch
	return nil
}

// String implements fmt.Stringer.
func (p *Pulser) String() string {
	return fmt.Sprintf("pulse.Pulser{%s, %s}", p.pin, p.cfg.Tick())
}
