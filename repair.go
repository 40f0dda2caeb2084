package epd47

import "time"

// Repair cycle parameters.
const (
	clearCycles = 4
	clearPasses = 4
	darkPasses  = 20
	lightPasses = 40
	repairRest  = 500 * time.Millisecond
)

// Repair runs the ghost clearing cycle: the panel is alternately driven fully
// black and fully white many times, resting between passes.
//
// Repair powers the panel on itself and powers it off when done. The rests
// and the power settle waits use delay, or the configured Delayer when delay
// is nil. The framebuffer is
// not modified, so a Flush afterwards redraws the previous image.
func (d *Dev) Repair(delay Delayer) error {
	if delay == nil {
		delay = d.delay
	}
	start := time.Now()
	d.log.Info("starting repair")
	if err := d.powerOn(delay); err != nil {
		return err
	}
	if err := d.clearCycle(); err != nil {
		return err
	}
	d.log.Infof("repair: %d dark passes", darkPasses)
	for i := 0; i < darkPasses; i++ {
		if err := d.pushPass(codeDarken, passTicks); err != nil {
			return err
		}
		delay.Delay(repairRest)
	}
	if err := d.clearCycle(); err != nil {
		return err
	}
	d.log.Infof("repair: %d light passes", lightPasses)
	for i := 0; i < lightPasses; i++ {
		if err := d.pushPass(codeLighten, passTicks); err != nil {
			return err
		}
		delay.Delay(repairRest)
	}
	if err := d.clearCycle(); err != nil {
		return err
	}
	if err := d.powerOff(delay); err != nil {
		return err
	}
	d.log.Infof("repair done in %s", time.Since(start))
	return nil
}

// clearCycle alternates short dark and light passes to bring every pixel to
// white.
func (d *Dev) clearCycle() error {
	for c := 0; c < clearCycles; c++ {
		for i := 0; i < clearPasses; i++ {
			if err := d.pushPass(codeDarken, passTicks); err != nil {
				return err
			}
		}
		for i := 0; i < clearPasses; i++ {
			if err := d.pushPass(codeLighten, passTicks); err != nil {
				return err
			}
		}
	}
	return nil
}

// pushPass drives every pixel of the panel with code for one frame.
func (d *Dev) pushPass(code byte, ticks uint16) error {
	if err := d.startFrame(); err != nil {
		return err
	}
	fillRow(d.row, code)
	for y := d.rect.Min.Y; y < d.rect.Max.Y; y++ {
		if err := d.outputRow(d.row, ticks); err != nil {
			return err
		}
	}
	return d.endFrame()
}
