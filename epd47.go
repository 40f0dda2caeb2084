package epd47

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/epd47/cfgreg"
	"github.com/flavioheleno/epd47/image4bit"
	"github.com/flavioheleno/epd47/parallel"
	"github.com/flavioheleno/epd47/pulse"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Panel geometry.
const (
	Width           = 960
	Height          = 540
	FrameBufferSize = Width * Height / 2
)

// Pins is the set of lines wired to the panel. Every pin is required.
type Pins struct {
	// Row bus, D[0] is the least significant bit
	Data [8]gpio.PinOut
	DC   gpio.PinOut // Data/Command select of the row bus
	WRX  gpio.PinOut // Row bus write strobe

	// Configuration shift register
	CfgData gpio.PinOut
	CfgClk  gpio.PinOut
	CfgStr  gpio.PinOut

	// Gate clock, driven by the pulse channel
	Pulse gpio.PinOut
}

// Opts is the configuration for the panel.
type Opts struct {
	// Panel dimensions in pixels
	W int // Width (0 means 960, must be a multiple of 4)
	H int // Height (0 means 540)

	// Pulse channel clock (default: pulse.DefaultConfig)
	Pulse *pulse.Config

	// Settle delay source for power sequencing (default: SystemDelay)
	Delay Delayer

	// Logger (default: logrus.StandardLogger())
	Logger logrus.FieldLogger
}

// Dev is the handle to the panel.
//
// Drawing only updates the in-memory framebuffer; Flush transfers it to the
// panel. Dev is not safe for concurrent use.
type Dev struct {
	// Peripherals
	reg    *cfgreg.Dev
	pulser *pulse.Pulser
	bus    conn.Conn

	// Geometry and pixels
	rect image.Rectangle
	fb   *image4bit.HorizontalNibble
	row  []byte // drive codes of one row, 2 bits per pixel

	delay Delayer
	log   logrus.FieldLogger

	// State
	power PowerState
}

// New returns a handle to the panel wired to pins, with the gate clock
// produced by periph.
//
// The configuration register is cleared; the panel stays powered off until
// PowerOn. opts can be nil to use defaults (960x540).
func New(pins *Pins, periph pulse.Peripheral, opts *Opts) (*Dev, error) {
	if pins == nil {
		return nil, errors.New("epd47: pins are required")
	}
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	p, err := pulse.New(periph, pins.Pulse, o.Pulse)
	if err != nil {
		return nil, fmt.Errorf("epd47: %w", err)
	}
	bus, err := parallel.New(pins.Data, pins.DC, pins.WRX)
	if err != nil {
		return nil, &PeripheralError{Op: "row bus", Err: err}
	}
	reg, err := cfgreg.New(pins.CfgData, pins.CfgClk, pins.CfgStr)
	if err != nil {
		return nil, &PeripheralError{Op: "config register", Err: err}
	}
	return newDev(reg, p, bus, o), nil
}

func (o *Opts) withDefaults() (*Opts, error) {
	var r Opts
	if o != nil {
		r = *o
	}
	if r.W == 0 {
		r.W = Width
	}
	if r.H == 0 {
		r.H = Height
	}
	if r.W <= 0 || r.W%4 != 0 {
		return nil, errors.New("epd47: width must be a positive multiple of 4")
	}
	if r.H <= 0 {
		return nil, errors.New("epd47: height must be positive")
	}
	if r.Delay == nil {
		r.Delay = SystemDelay
	}
	if r.Logger == nil {
		r.Logger = logrus.StandardLogger()
	}
	return &r, nil
}

func newDev(reg *cfgreg.Dev, p *pulse.Pulser, bus conn.Conn, o *Opts) *Dev {
	rect := image.Rect(0, 0, o.W, o.H)
	d := &Dev{
		reg:    reg,
		pulser: p,
		bus:    bus,
		rect:   rect,
		fb:     image4bit.NewFrameBuffer(rect),
		row:    make([]byte, o.W/4),
		delay:  o.Delay,
		log:    o.Logger.WithField("dev", "epd47"),
		power:  PowerOff,
	}
	d.log.Debugf("initialized %dx%d panel, pulse tick %s", o.W, o.H, p.Config().Tick())
	return d
}

// ColorModel returns the color model of the panel.
func (d *Dev) ColorModel() color.Model {
	return image4bit.Gray4Model
}

// Bounds returns the panel rectangle.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Size returns the panel dimensions.
func (d *Dev) Size() image.Point {
	return d.rect.Size()
}

// FrameBuffer returns the framebuffer. Changes are visible after the next
// Flush.
func (d *Dev) FrameBuffer() *image4bit.HorizontalNibble {
	return d.fb
}

// Clear sets the whole framebuffer to white.
func (d *Dev) Clear() {
	d.fb.Clear()
}

// Fill sets the whole framebuffer to level.
func (d *Dev) Fill(level uint8) error {
	return d.fb.Fill(level)
}

// SetPixel writes level at (x, y).
func (d *Dev) SetPixel(x, y int, level uint8) error {
	return d.fb.SetLevel(x, y, level)
}

// Pixel returns the level stored at (x, y).
func (d *Dev) Pixel(x, y int) (uint8, error) {
	return d.fb.Level(x, y)
}

// FillRect sets the part of r that lies on the panel to level.
func (d *Dev) FillRect(r image.Rectangle, level uint8) error {
	return d.fb.FillRect(r, level)
}

// Halt completes any outstanding pulse and powers the panel off.
func (d *Dev) Halt() error {
	return d.PowerOff()
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("epd47.Dev{%dx%d, %s}", d.rect.Dx(), d.rect.Dy(), d.power)
}
