package parallel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type edge struct {
	Pin   string
	Level gpio.Level
}

type recordingPin struct {
	*gpiotest.Pin
	trace *[]edge
	err   error
}

func (p *recordingPin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	*p.trace = append(*p.trace, edge{p.N, l})
	return p.Pin.Out(l)
}

type bus struct {
	*Bus
	trace []edge
	data  [8]*recordingPin
	dc    *recordingPin
	wrx   *recordingPin
}

func newBus(t *testing.T) *bus {
	t.Helper()
	b := &bus{}
	var pins [8]gpio.PinOut
	for i := range b.data {
		b.data[i] = &recordingPin{Pin: &gpiotest.Pin{N: fmt.Sprintf("D%d", i)}, trace: &b.trace}
		pins[i] = b.data[i]
	}
	b.dc = &recordingPin{Pin: &gpiotest.Pin{N: "DC"}, trace: &b.trace}
	b.wrx = &recordingPin{Pin: &gpiotest.Pin{N: "WRX"}, trace: &b.trace}
	var err error
	if b.Bus, err = New(pins, b.dc, b.wrx); err != nil {
		t.Fatal(err)
	}
	b.trace = nil
	return b
}

// latched rebuilds the bytes seen by the source drivers on every rising WRX
// edge while DC is high.
func (b *bus) latched() []byte {
	var out []byte
	var v byte
	dc := false
	for _, e := range b.trace {
		switch e.Pin {
		case "DC":
			dc = bool(e.Level)
		case "WRX":
			if e.Level == gpio.High && dc {
				out = append(out, v)
			}
		default:
			var i uint
			fmt.Sscanf(e.Pin, "D%d", &i)
			if e.Level {
				v |= 1 << i
			} else {
				v &^= 1 << i
			}
		}
	}
	return out
}

func TestNewNilPin(t *testing.T) {
	var pins [8]gpio.PinOut
	for i := range pins {
		pins[i] = &gpiotest.Pin{}
	}
	pins[3] = nil
	if _, err := New(pins, &gpiotest.Pin{}, &gpiotest.Pin{}); err == nil {
		t.Error("New() with nil D3 succeeded")
	}
}

func TestWriteRow(t *testing.T) {
	b := newBus(t)
	row := []byte{0x00, 0xFF, 0x5A, 0x5A, 0x81}
	if err := b.Tx(row, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(b.latched(), row); diff != "" {
		t.Errorf("latched bytes difference (-got +want):\n%s", diff)
	}
	if b.trace[0] != (edge{"DC", gpio.High}) || b.trace[len(b.trace)-1] != (edge{"DC", gpio.Low}) {
		t.Errorf("row not framed by DC: first %v, last %v", b.trace[0], b.trace[len(b.trace)-1])
	}
}

func TestWriteRowSkipsRepeat(t *testing.T) {
	b := newBus(t)
	row := []byte{0x12, 0x34}
	if err := b.WriteRow(row); err != nil {
		t.Fatal(err)
	}
	n := len(b.trace)
	if err := b.WriteRow([]byte{0x12, 0x34}); err != nil {
		t.Fatal(err)
	}
	if len(b.trace) != n {
		t.Errorf("repeated row toggled %d lines", len(b.trace)-n)
	}
	if b.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", b.Skipped())
	}

	b.Invalidate()
	if err := b.WriteRow(row); err != nil {
		t.Fatal(err)
	}
	if len(b.trace) == n {
		t.Error("row not sent after Invalidate")
	}
	if diff := cmp.Diff(b.latched(), []byte{0x12, 0x34, 0x12, 0x34}); diff != "" {
		t.Errorf("latched bytes difference (-got +want):\n%s", diff)
	}
}

func TestWriteRowError(t *testing.T) {
	b := newBus(t)
	errPin := errors.New("stuck")
	b.data[2].err = errPin
	if err := b.WriteRow([]byte{0x04}); !errors.Is(err, errPin) {
		t.Fatalf("WriteRow() = %v, want %v", err, errPin)
	}
	b.data[2].err = nil
	b.trace = nil
	if err := b.WriteRow([]byte{0x04}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(b.latched(), []byte{0x04}); diff != "" {
		t.Errorf("latched bytes difference (-got +want):\n%s", diff)
	}
}

func TestTxRead(t *testing.T) {
	b := newBus(t)
	if err := b.Tx([]byte{1}, make([]byte, 1)); err == nil {
		t.Error("Tx() with a read buffer succeeded")
	}
}
