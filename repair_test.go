package epd47

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRepair(t *testing.T) {
	r := newRig(t, &Opts{W: 8, H: 2})
	drawTestRow(t, r.dev)
	before := append([]byte(nil), r.dev.FrameBuffer().Pix...)

	var rests []time.Duration
	if err := r.dev.Repair(DelayFunc(func(d time.Duration) { rests = append(rests, d) })); err != nil {
		t.Fatal(err)
	}

	passes := 3*clearCycles*2*clearPasses + darkPasses + lightPasses
	if got, want := len(r.bus.rows), passes*2; got != want {
		t.Errorf("rows = %d, want %d", got, want)
	}
	if got, want := len(r.periph.programs), passes*(4+2+2); got != want {
		t.Errorf("pulses = %d, want %d", got, want)
	}

	// Clear cycle first: 4 dark then 4 light passes.
	darkRow, lightRow := []byte{0x55, 0x55}, []byte{0xAA, 0xAA}
	for i := 0; i < 2*clearPasses; i++ {
		want := darkRow
		if i >= clearPasses {
			want = lightRow
		}
		if diff := cmp.Diff(r.bus.rows[2*i], want); diff != "" {
			t.Errorf("pass %d row difference (-got +want):\n%s", i, diff)
		}
	}
	// Then the dark passes.
	first := 2 * clearCycles * 2 * clearPasses
	if diff := cmp.Diff(r.bus.rows[first], darkRow); diff != "" {
		t.Errorf("first dark pass row difference (-got +want):\n%s", diff)
	}

	// Power settle waits go through the same Delayer as the rests.
	want := []time.Duration{ms(10), ms(20), ms(5)}
	for i := 0; i < darkPasses+lightPasses; i++ {
		want = append(want, 500*time.Millisecond)
	}
	want = append(want, ms(5), ms(20), ms(10))
	if diff := cmp.Diff(rests, want); diff != "" {
		t.Errorf("delays difference (-got +want):\n%s", diff)
	}
	if len(r.delays) != 0 {
		t.Errorf("configured Delayer called %d times, want 0", len(r.delays))
	}
	if r.dev.Power() != PowerOff {
		t.Errorf("Power() = %s, want Off", r.dev.Power())
	}
	if diff := cmp.Diff(r.dev.FrameBuffer().Pix, before); diff != "" {
		t.Errorf("framebuffer changed (-got +want):\n%s", diff)
	}
}

func TestRepairDefaultDelay(t *testing.T) {
	r := newRig(t, &Opts{W: 4, H: 1})
	if err := r.dev.Repair(nil); err != nil {
		t.Fatal(err)
	}
	if got, want := len(r.delays), 6+darkPasses+lightPasses; got != want {
		t.Errorf("delays = %d, want %d", got, want)
	}
}

func TestRepairAfterFlush(t *testing.T) {
	r := newRig(t, &Opts{W: 8, H: 2})
	if err := r.dev.PowerOn(); err != nil {
		t.Fatal(err)
	}
	if err := r.dev.Flush(BlackOnWhite); err != nil {
		t.Fatal(err)
	}
	if err := r.dev.Repair(DelayFunc(func(time.Duration) {})); err != nil {
		t.Fatal(err)
	}
	if r.dev.Power() != PowerOff {
		t.Errorf("Power() = %s, want Off", r.dev.Power())
	}
}
