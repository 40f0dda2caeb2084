package epd47

import (
	"fmt"
	"strings"
)

// DrawMode selects how gray levels map to pulses during a flush.
type DrawMode int

const (
	// BlackOnWhite darkens a white panel towards the framebuffer levels.
	BlackOnWhite DrawMode = iota
	// WhiteOnBlack lightens a black panel towards the framebuffer levels.
	WhiteOnBlack
	// WhiteOnWhite lightens pixels, for redrawing over a white background.
	WhiteOnWhite
)

var modeNames = []string{"black-on-white", "white-on-black", "white-on-white"}

func (m DrawMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("DrawMode(%d)", int(m))
	}
	return modeNames[m]
}

// Set implements flag.Value.
func (m *DrawMode) Set(s string) error {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			*m = DrawMode(i)
			return nil
		}
	}
	return fmt.Errorf("epd47: unknown draw mode %q, want one of %s", s, strings.Join(modeNames, ", "))
}

func (m DrawMode) valid() bool {
	return m >= BlackOnWhite && m <= WhiteOnWhite
}

// Drive codes, two bits per pixel on the row bus.
const (
	codeKeep    byte = 0b00
	codeDarken  byte = 0b01
	codeLighten byte = 0b10
)

// codes returns the drive code of every gray level for frame k of a flush.
func (m DrawMode) codes(k int) [16]byte {
	var c [16]byte
	for l := range c {
		switch m {
		case BlackOnWhite:
			if k < 15-l {
				c[l] = codeDarken
			}
		case WhiteOnBlack:
			if k < l {
				c[l] = codeLighten
			}
		case WhiteOnWhite:
			if k < 15-l {
				c[l] = codeLighten
			}
		}
	}
	return c
}
