package epd47

import (
	"fmt"
	"image"
	"time"

	"github.com/flavioheleno/epd47/cfgreg"
)

// frameCount is the number of frames of one flush; each frame can move a
// pixel one gray level.
const frameCount = 15

// rowTicks is the gate pulse length of each frame, in pulse ticks. Late
// frames drive longer to separate the darker levels.
var rowTicks = [frameCount]uint16{30, 30, 20, 20, 30, 30, 30, 40, 40, 50, 50, 50, 100, 200, 300}

// Pulse lengths of the frame and row framing, in pulse ticks.
const (
	rowLowTicks = 50
	passTicks   = 50
)

// Flush drives the whole framebuffer to the panel.
//
// The panel must be powered on, otherwise ErrHardware is returned and nothing
// is driven.
func (d *Dev) Flush(mode DrawMode) error {
	return d.flush(d.rect, mode)
}

// FlushArea drives only the pixels of r; the rest of the panel is left as is.
//
// r is clipped to the panel; an r entirely off the panel is ErrOutOfBounds.
func (d *Dev) FlushArea(r image.Rectangle, mode DrawMode) error {
	r = r.Canon()
	area := r.Intersect(d.rect)
	if area.Empty() {
		if r.Empty() {
			return nil
		}
		return ErrOutOfBounds
	}
	return d.flush(area, mode)
}

func (d *Dev) flush(area image.Rectangle, mode DrawMode) error {
	if !mode.valid() {
		return fmt.Errorf("epd47: invalid draw mode %s", mode)
	}
	if d.power != PowerOn {
		d.log.Warnf("flush while power is %s", d.power)
		return ErrHardware
	}
	start := time.Now()
	d.log.Infof("flushing %v (%s)", area, mode)
	for k := 0; k < frameCount; k++ {
		codes := mode.codes(k)
		if err := d.startFrame(); err != nil {
			return err
		}
		for y := d.rect.Min.Y; y < d.rect.Max.Y; y++ {
			d.driveRow(d.row, y, area, &codes)
			if err := d.outputRow(d.row, rowTicks[k]); err != nil {
				return err
			}
		}
		if err := d.endFrame(); err != nil {
			return err
		}
		d.log.Debugf("frame %d/%d done", k+1, frameCount)
	}
	d.log.Infof("flush done in %s", time.Since(start))
	return nil
}

// driveRow encodes framebuffer row y into dst, 4 pixels per byte with the
// first pixel in the top bits. Pixels outside area get codeKeep.
func (d *Dev) driveRow(dst []byte, y int, area image.Rectangle, codes *[16]byte) {
	clear(dst)
	if y < area.Min.Y || y >= area.Max.Y {
		return
	}
	off := (y - d.rect.Min.Y) * d.fb.Stride
	src := d.fb.Pix[off : off+d.fb.Stride]
	for x := area.Min.X; x < area.Max.X; x++ {
		rx := x - d.rect.Min.X
		level := src[rx/2] >> 4
		if rx&1 != 0 {
			level = src[rx/2] & 0x0F
		}
		dst[rx/4] |= codes[level] << uint(6-2*(rx%4))
	}
}

// fillRow sets every pixel of dst to code.
func fillRow(dst []byte, code byte) {
	b := code<<6 | code<<4 | code<<2 | code
	for i := range dst {
		dst[i] = b
	}
}

// startFrame resets the gate driver to the first row.
func (d *Dev) startFrame() error {
	if err := d.setReg("frame start", func(s cfgreg.State) cfgreg.State { return s.WithMode(true) }); err != nil {
		return err
	}
	if err := d.pulse(10, 10, true); err != nil {
		return err
	}
	if err := d.setReg("frame start", func(s cfgreg.State) cfgreg.State { return s.WithStartVertical(false) }); err != nil {
		return err
	}
	if err := d.pulse(100, 100, false); err != nil {
		return err
	}
	if err := d.setReg("frame start", func(s cfgreg.State) cfgreg.State { return s.WithStartVertical(true) }); err != nil {
		return err
	}
	if err := d.pulse(0, 100, true); err != nil {
		return err
	}
	if err := d.setReg("frame start", func(s cfgreg.State) cfgreg.State { return s.WithOutput(true) }); err != nil {
		return err
	}
	return d.pulse(10, 10, true)
}

// outputRow loads row into the source drivers, latches it and clocks the
// gate driver to the next row. The gate pulse is left running.
func (d *Dev) outputRow(row []byte, ticks uint16) error {
	if err := d.bus.Tx(row, nil); err != nil {
		return &PeripheralError{Op: "row bus", Err: err}
	}
	if err := d.setReg("latch", func(s cfgreg.State) cfgreg.State { return s.WithLatch(true) }); err != nil {
		return err
	}
	if err := d.setReg("latch", func(s cfgreg.State) cfgreg.State { return s.WithLatch(false) }); err != nil {
		return err
	}
	return d.pulse(ticks, rowLowTicks, false)
}

// endFrame disables the output and the gate driver.
func (d *Dev) endFrame() error {
	if err := d.setReg("frame end", func(s cfgreg.State) cfgreg.State { return s.WithOutput(false) }); err != nil {
		return err
	}
	if err := d.setReg("frame end", func(s cfgreg.State) cfgreg.State { return s.WithMode(false) }); err != nil {
		return err
	}
	if err := d.pulse(10, 10, true); err != nil {
		return err
	}
	return d.pulse(10, 10, true)
}

func (d *Dev) setReg(op string, f func(cfgreg.State) cfgreg.State) error {
	if err := d.reg.Apply(f); err != nil {
		return &PeripheralError{Op: op, Err: err}
	}
	return nil
}

func (d *Dev) pulse(high, low uint16, wait bool) error {
	if err := d.pulser.Pulse(high, low, wait); err != nil {
		return &PeripheralError{Op: "pulse", Err: err}
	}
	return nil
}
