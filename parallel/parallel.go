// Package parallel implements the 8 bit write-only row bus of the panel
// source drivers.
//
// Bytes are presented on eight data lines and clocked by a rising edge on the
// WRX strobe while DC selects data mode. Bus implements conn.Conn so callers
// can drive it, or a test double, through Tx.
package parallel

import (
	"bytes"
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Bus is a handle to the row bus.
//
// A row identical to the previous one is not sent again: the source drivers
// keep the last row in their shift registers.
type Bus struct {
	data [8]gpio.PinOut
	dc   gpio.PinOut
	wrx  gpio.PinOut

	levels  [8]gpio.Level
	known   bool
	last    []byte
	cached  bool
	skipped int
}

// New drives every line low and returns a Bus.
//
// data[0] carries the least significant bit.
func New(data [8]gpio.PinOut, dc, wrx gpio.PinOut) (*Bus, error) {
	for i, p := range data {
		if p == nil {
			return nil, fmt.Errorf("parallel: nil data pin D%d", i)
		}
	}
	if dc == nil || wrx == nil {
		return nil, errors.New("parallel: nil control pin")
	}
	b := &Bus{data: data, dc: dc, wrx: wrx}
	for i, p := range b.data {
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("parallel: D%d: %w", i, err)
		}
	}
	if err := b.dc.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("parallel: dc: %w", err)
	}
	if err := b.wrx.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("parallel: wrx: %w", err)
	}
	b.known = true
	return b, nil
}

// String implements conn.Conn.
func (b *Bus) String() string {
	return fmt.Sprintf("parallel.Bus{%s, %s}", b.dc, b.wrx)
}

// Duplex implements conn.Conn.
func (b *Bus) Duplex() conn.Duplex {
	return conn.Half
}

// Tx writes w as one row. The bus cannot be read so r must be empty.
func (b *Bus) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("parallel: bus is write-only")
	}
	return b.WriteRow(w)
}

// WriteRow clocks row out on the bus unless it matches the previous row.
//
// On error the cached row is dropped so the next write is always sent.
func (b *Bus) WriteRow(row []byte) error {
	if b.cached && bytes.Equal(b.last, row) {
		b.skipped++
		return nil
	}
	b.cached = false
	if err := b.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("parallel: dc: %w", err)
	}
	for _, v := range row {
		if err := b.writeByte(v); err != nil {
			return err
		}
	}
	if err := b.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("parallel: dc: %w", err)
	}
	b.last = append(b.last[:0], row...)
	b.cached = true
	return nil
}

// Invalidate forgets the previous row so the next one is sent.
func (b *Bus) Invalidate() {
	b.cached = false
}

// Skipped returns the number of rows not sent because they repeated the
// previous one.
func (b *Bus) Skipped() int {
	return b.skipped
}

func (b *Bus) writeByte(v byte) error {
	if err := b.wrx.Out(gpio.Low); err != nil {
		return fmt.Errorf("parallel: wrx: %w", err)
	}
	for i, p := range b.data {
		l := gpio.Level(v&(1<<uint(i)) != 0)
		if b.known && b.levels[i] == l {
			continue
		}
		if err := p.Out(l); err != nil {
			b.known = false
			return fmt.Errorf("parallel: D%d: %w", i, err)
		}
		b.levels[i] = l
	}
	b.known = true
	if err := b.wrx.Out(gpio.High); err != nil {
		return fmt.Errorf("parallel: wrx: %w", err)
	}
	return nil
}

var _ conn.Conn = &Bus{}
