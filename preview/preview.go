// Package preview renders a panel image on an ANSI 256 color terminal.
//
// It is used to check a drawing without a panel attached: each terminal cell
// shows the average gray of a block of pixels.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Opts is the configuration of a preview.
type Opts struct {
	Cols    int              // Terminal columns used for the image width (default: 120)
	Palette *ansi256.Palette // default: ansi256.Default
	W       io.Writer        // default: colorable stdout
}

// Dev writes previews to a terminal.
type Dev struct {
	w       io.Writer
	cols    int
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a preview writer. opts can be nil.
func New(opts *Opts) *Dev {
	var o Opts
	if opts != nil {
		o = *opts
	}
	if o.Cols <= 0 {
		o.Cols = 120
	}
	if o.Palette == nil {
		o.Palette = ansi256.Default
	}
	if o.W == nil {
		o.W = colorable.NewColorableStdout()
	}
	return &Dev{w: o.W, cols: o.Cols, palette: *o.Palette}
}

func (d *Dev) String() string {
	return fmt.Sprintf("preview.Dev{%d cols}", d.cols)
}

// Render writes img. A cell is twice as high as it is wide, so it covers
// scale×2scale pixels where scale fits the image width in Cols.
func (d *Dev) Render(img image.Image) error {
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	scale := (b.Dx() + d.cols - 1) / d.cols
	d.buf.Reset()
	for y := b.Min.Y; y < b.Max.Y; y += 2 * scale {
		for x := b.Min.X; x < b.Max.X; x += scale {
			cell := image.Rect(x, y, x+scale, y+2*scale).Intersect(b)
			_, _ = io.WriteString(&d.buf, d.palette.Block(average(img, cell)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

func average(img image.Image, r image.Rectangle) color.NRGBA {
	var sum, n int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			sum += int(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
			n++
		}
	}
	g := uint8(sum / n)
	return color.NRGBA{R: g, G: g, B: g, A: 255}
}
