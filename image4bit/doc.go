// Package image4bit provides the 4-bit grayscale raster used as the panel framebuffer.
//
// Each pixel holds one of 16 levels, 0 being black and 15 white. Two pixels
// share a byte, the left one in the high nibble:
//
//	x:     0 1   2 3
//	level: 5 A   3 C
//	byte:  0x5A  0x3C
//
// HorizontalNibble implements image.Image and draw.Image, so any renderer that
// targets the standard interfaces can paint into it. Colors are converted by
// Gray4Model using luminance; transparent colors become white.
//
// The checked accessors report errors instead of ignoring bad input:
//
//	fb := image4bit.NewFrameBuffer(image.Rect(0, 0, 960, 540)) // all white
//
//	if err := fb.SetLevel(10, 20, 8); err != nil {
//		// image4bit.ErrOutOfBounds or image4bit.ErrInvalidColor
//	}
//	_ = fb.FillRect(image.Rect(0, 0, 100, 40), 0)
//
//	draw.Draw(fb, fb.Bounds(), image.NewUniform(image4bit.Black), image.Point{}, draw.Src)
package image4bit
