package pulse

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// NewGPIO returns a Peripheral that bit-bangs the program on the pin itself.
//
// Transmissions run synchronously inside Transmit, busy-waiting each phase,
// so Wait never blocks. It is meant for hosts without a pulse-train block and
// for simulation; timing accuracy is bounded by the GPIO toggle rate.
func NewGPIO() Peripheral {
	return &gpioPeripheral{now: time.Now}
}

type gpioPeripheral struct {
	now func() time.Time
}

func (g *gpioPeripheral) Configure(p gpio.PinOut, cfg Config) (Channel, error) {
	if p == nil {
		return nil, errors.New("nil pin")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := p.Out(cfg.IdleLevel); err != nil {
		return nil, err
	}
	return &gpioChannel{pin: p, idle: cfg.IdleLevel, tick: cfg.Tick(), now: g.now}, nil
}

type gpioChannel struct {
	pin  gpio.PinOut
	idle gpio.Level
	tick time.Duration
	now  func() time.Time
}

func (c *gpioChannel) Transmit(codes []Code) (Transmission, error) {
	for _, code := range codes {
		if code.IsEnd() {
			break
		}
		if err := c.phase(code.Level0, code.Length0); err != nil {
			return nil, err
		}
		if err := c.phase(code.Level1, code.Length1); err != nil {
			return nil, err
		}
	}
	if err := c.pin.Out(c.idle); err != nil {
		return nil, err
	}
	return done{c}, nil
}

func (c *gpioChannel) phase(l bool, ticks uint16) error {
	if ticks == 0 {
		return nil
	}
	if err := c.pin.Out(gpio.Level(l)); err != nil {
		return err
	}
	deadline := c.now().Add(time.Duration(ticks) * c.tick)
	for c.now().Before(deadline) {
	}
	return nil
}

// done is a transmission that already completed.
type done struct {
	ch Channel
}

func (d done) Wait() (Channel, error) {
	return d.ch, nil
}
