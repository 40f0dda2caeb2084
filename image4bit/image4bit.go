package image4bit

import (
	"errors"
	"image"
	"image/color"
)

// MaxLevel is the brightest gray level (white).
const MaxLevel = 0x0F

var (
	// ErrOutOfBounds is returned when a pixel coordinate lies outside the image.
	ErrOutOfBounds = errors.New("image4bit: pixel out of bounds")
	// ErrInvalidColor is returned for gray levels above MaxLevel.
	ErrInvalidColor = errors.New("image4bit: gray level out of range")
)

// Gray4 represents a 4-bit grayscale color (0-15 intensity levels).
// Only the lower 4 bits of Y are used when converting to RGBA.
type Gray4 struct {
	Y uint8
}

// Common levels.
var (
	Black = Gray4{Y: 0}
	White = Gray4{Y: MaxLevel}
)

// RGBA converts the Gray4 color to standard RGBA.
func (c Gray4) RGBA() (r, g, b, a uint32) {
	// 0xF * 0x1111 = 0xFFFF, 0x5 * 0x1111 = 0x5555, etc.
	y := uint32(c.Y&0x0F) * 0x1111
	return y, y, y, 0xFFFF
}

// Valid reports whether Y is a representable gray level.
func (c Gray4) Valid() bool {
	return c.Y <= MaxLevel
}

func toGray4(c color.Color) color.Color {
	if g, ok := c.(Gray4); ok {
		return g
	}
	r, g, b, a := c.RGBA()
	// Transparent pixels lean towards the paper color.
	if a == 0 {
		return White
	}
	// 0.299R + 0.587G + 0.114B on 16-bit channels.
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Gray4{Y: uint8(y >> 12)}
}

// Gray4Model converts colors to Gray4.
var Gray4Model = color.ModelFunc(toGray4)

// HorizontalNibble is a 4-bit grayscale image where pixels are stored in horizontal nibble packing.
// Each byte contains 2 pixels: high nibble = left pixel, low nibble = right pixel.
type HorizontalNibble struct {
	Pix    []byte          // Pixel data (2 pixels per byte)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewHorizontalNibble creates a new black HorizontalNibble image with the specified bounds.
// The width must be even (since 2 pixels per byte).
func NewHorizontalNibble(r image.Rectangle) *HorizontalNibble {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &HorizontalNibble{Rect: r}
	}
	if w%2 != 0 {
		panic("image4bit: width must be even")
	}

	stride := w / 2
	return &HorizontalNibble{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// NewFrameBuffer creates a HorizontalNibble initialized to white (0xFF bytes),
// matching the resting state of a freshly cleared panel.
func NewFrameBuffer(r image.Rectangle) *HorizontalNibble {
	p := NewHorizontalNibble(r)
	p.Clear()
	return p
}

// ColorModel returns the color model of the image.
func (p *HorizontalNibble) ColorModel() color.Model {
	return Gray4Model
}

// Bounds returns the image bounds.
func (p *HorizontalNibble) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *HorizontalNibble) At(x, y int) color.Color {
	return p.Gray4At(x, y)
}

// Gray4At returns the Gray4 color of the pixel at (x, y).
func (p *HorizontalNibble) Gray4At(x, y int) Gray4 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Gray4{}
	}
	offset, shift := p.pixOffset(x, y)
	return Gray4{Y: (p.Pix[offset] >> shift) & 0x0F}
}

// Set sets the color of the pixel at (x, y). Out of bounds writes are ignored,
// as required by draw.Image.
func (p *HorizontalNibble) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.setNibble(x, y, Gray4Model.Convert(c).(Gray4).Y)
}

// SetGray4 sets the Gray4 color of the pixel at (x, y), masking Y to 4 bits.
func (p *HorizontalNibble) SetGray4(x, y int, c Gray4) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.setNibble(x, y, c.Y)
}

// SetLevel writes a gray level at (x, y).
//
// Bounds are checked before the level; neither failure modifies the image.
func (p *HorizontalNibble) SetLevel(x, y int, level uint8) error {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return ErrOutOfBounds
	}
	if level > MaxLevel {
		return ErrInvalidColor
	}
	p.setNibble(x, y, level)
	return nil
}

// Level returns the gray level stored at (x, y).
func (p *HorizontalNibble) Level(x, y int) (uint8, error) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0, ErrOutOfBounds
	}
	offset, shift := p.pixOffset(x, y)
	return (p.Pix[offset] >> shift) & 0x0F, nil
}

// Fill sets every pixel to level.
func (p *HorizontalNibble) Fill(level uint8) error {
	if level > MaxLevel {
		return ErrInvalidColor
	}
	b := level<<4 | level
	for i := range p.Pix {
		p.Pix[i] = b
	}
	return nil
}

// FillRect sets every pixel of r that lies inside the image to level.
//
// r is clipped to the image bounds; a rectangle that does not overlap the
// image at all is reported as ErrOutOfBounds.
func (p *HorizontalNibble) FillRect(r image.Rectangle, level uint8) error {
	if level > MaxLevel {
		return ErrInvalidColor
	}
	r = r.Canon()
	clipped := r.Intersect(p.Rect)
	if clipped.Empty() {
		if r.Empty() {
			return nil
		}
		return ErrOutOfBounds
	}
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			p.setNibble(x, y, level)
		}
	}
	return nil
}

// Clear fills the image with white.
func (p *HorizontalNibble) Clear() {
	_ = p.Fill(MaxLevel)
}

func (p *HorizontalNibble) setNibble(x, y int, level uint8) {
	offset, shift := p.pixOffset(x, y)
	// Clear the nibble and set the new value
	p.Pix[offset] = (p.Pix[offset] &^ (0x0F << shift)) | ((level & 0x0F) << shift)
}

// pixOffset returns the byte offset and bit shift for the pixel at (x, y).
// Even x (relative to Rect.Min.X) uses the high nibble (shift 4), odd x the
// low nibble (shift 0).
func (p *HorizontalNibble) pixOffset(x, y int) (offset int, shift uint) {
	rx := x - p.Rect.Min.X
	offset = (y-p.Rect.Min.Y)*p.Stride + rx/2
	shift = uint(4 * (1 - (rx & 1)))
	return
}
