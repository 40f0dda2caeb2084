package epd47

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"iter"

	"github.com/flavioheleno/epd47/image4bit"
	"periph.io/x/conn/v3/display"
)

// Pixel is one element of a pixel stream.
type Pixel struct {
	image.Point
	Color image4bit.Gray4
}

// DrawPixels applies a stream of pixels to the framebuffer.
//
// Pixels off the panel are skipped so shapes may be clipped at the edges. Any
// other failure, such as a level above 15, stops the stream and is returned;
// pixels applied before it stay written.
func (d *Dev) DrawPixels(pixels iter.Seq[Pixel]) error {
	var err error
	for p := range pixels {
		if e := d.fb.SetLevel(p.X, p.Y, p.Color.Y); e != nil {
			if errors.Is(e, ErrOutOfBounds) {
				continue
			}
			err = e
			break
		}
	}
	return err
}

// Set implements draw.Image. Points off the panel are ignored.
func (d *Dev) Set(x, y int, c color.Color) {
	d.fb.Set(x, y, c)
}

// At implements image.Image.
func (d *Dev) At(x, y int) color.Color {
	return d.fb.At(x, y)
}

// Draw implements display.Drawer.
//
// src is composed into the framebuffer over dst clipped to the panel, using
// draw.Src. Nothing reaches the panel before the next Flush.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	// Fast path: a full panel nibble image is copied as is
	if srcImg, ok := src.(*image4bit.HorizontalNibble); ok {
		if dst == d.rect && sp == (image.Point{}) && srcImg.Rect == d.rect {
			copy(d.fb.Pix, srcImg.Pix)
			return nil
		}
	}

	draw.Draw(d.fb, dst, src, sp, draw.Src)
	return nil
}

var (
	_ display.Drawer = &Dev{}
	_ draw.Image     = &Dev{}
)
