// Package epd47 drives a 4.7" 960×540 4-bit grayscale e-paper panel.
//
// The panel has no controller of its own: the host shifts pixel drive codes
// onto the source drivers over an 8 bit parallel bus, steps the gate driver
// with timed pulses and switches the supply rails through a serial
// configuration register. This driver implements the display.Drawer interface
// from periph.io on top of an in-memory framebuffer.
//
// # Panel Characteristics
//
// - 4-bit grayscale with 16 intensity levels (0 black, 15 white)
// - Bistable: the image stays after power is removed
// - Full refresh in 15 frames, each moving a pixel at most one level
// - Partial refresh of a rectangle with FlushArea
// - Ghost clearing with Repair
//
// # Hardware Connection
//
//	Panel Line  → System Pin
//	D0..D7      → GPIO (row bus data)
//	DC          → GPIO (row bus data/command)
//	WRX         → GPIO (row bus write strobe)
//	CFG_DATA    → GPIO (configuration register data)
//	CFG_CLK     → GPIO (configuration register clock)
//	CFG_STR     → GPIO (configuration register strobe)
//	CKV         → GPIO (gate clock, driven by the pulse channel)
//
// The pinmap package reads this assignment from a YAML file.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//
//		"github.com/flavioheleno/epd47"
//		"github.com/flavioheleno/epd47/pinmap"
//		"github.com/flavioheleno/epd47/pulse"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Resolve the pins from the built-in mapping
//		m, _ := pinmap.Default()
//		pins, _ := m.Resolve()
//
//		// Create device
//		dev, _ := epd47.New(pins, pulse.NewGPIO(), nil)
//		defer dev.Halt()
//
//		// Draw a mid-gray rectangle on a white panel
//		dev.Clear()
//		dev.FillRect(image.Rect(200, 200, 300, 250), 8)
//
//		// Transfer the framebuffer
//		dev.PowerOn()
//		dev.Flush(epd47.BlackOnWhite)
//		dev.PowerOff()
//	}
//
// # Drawing
//
// Drawing never touches the panel; it only changes the framebuffer. There are
// three ways to draw:
//
//	// Checked pixel access
//	err := dev.SetPixel(10, 20, 4) // ErrOutOfBounds, ErrInvalidColor
//
//	// Any library rendering into a draw.Image
//	draw.Draw(dev, dev.Bounds(), img, image.Point{}, draw.Src)
//
//	// A stream of pixels, clipped at the panel edges
//	err = dev.DrawPixels(func(yield func(epd47.Pixel) bool) {
//		for x := -10; x < 10; x++ {
//			if !yield(epd47.Pixel{Point: image.Pt(x, 0), Color: image4bit.Black}) {
//				return
//			}
//		}
//	})
//
// # Draw Modes
//
// Flush takes the mode matching the current panel content:
//
//	epd47.BlackOnWhite // draw dark content over a cleared (white) panel
//	epd47.WhiteOnBlack // draw light content over a black panel
//	epd47.WhiteOnWhite // lighten content over a white panel
//
// DrawMode implements flag.Value.
//
// # Power
//
// Flush requires the panel to be powered on and returns ErrHardware otherwise.
// PowerOn and PowerOff are idempotent. The rails are switched in order (main
// supply, voltage rails, output enable) with settle delays, and in the reverse
// order when powering off. A register failure during a sequence leaves the
// state PowerUnknown; calling PowerOff brings the rails down from there.
//
// # Pulse Channel
//
// The gate clock is produced by a pulse.Peripheral. pulse.NewGPIO bit-bangs it
// on a plain GPIO; a host with a pulse-train block can provide its own
// implementation.
package epd47
