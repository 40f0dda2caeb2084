package epd47

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/flavioheleno/epd47/image4bit"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// hline yields a horizontal line from x0 to x1 (exclusive) at y.
func hline(x0, x1, y int, c image4bit.Gray4) func(func(Pixel) bool) {
	return func(yield func(Pixel) bool) {
		for x := x0; x < x1; x++ {
			if !yield(Pixel{Point: image.Pt(x, y), Color: c}) {
				return
			}
		}
	}
}

func TestDrawPixelsClipsOutOfBounds(t *testing.T) {
	r := newRig(t, &Opts{W: 8, H: 2})
	if err := r.dev.DrawPixels(hline(-4, 12, 1, image4bit.Gray4{Y: 3})); err != nil {
		t.Fatalf("DrawPixels() = %v", err)
	}
	for x := 0; x < 8; x++ {
		if got, _ := r.dev.Pixel(x, 1); got != 3 {
			t.Errorf("Pixel(%d, 1) = %d, want 3", x, got)
		}
		if got, _ := r.dev.Pixel(x, 0); got != 15 {
			t.Errorf("Pixel(%d, 0) = %d, want 15", x, got)
		}
	}
}

func TestDrawPixelsInvalidColor(t *testing.T) {
	r := newRig(t, &Opts{W: 8, H: 2})
	var pulled int
	seq := func(yield func(Pixel) bool) {
		for _, p := range []Pixel{
			{Point: image.Pt(0, 0), Color: image4bit.Black},
			{Point: image.Pt(1, 0), Color: image4bit.Gray4{Y: 16}},
			{Point: image.Pt(2, 0), Color: image4bit.Black},
		} {
			pulled++
			if !yield(p) {
				return
			}
		}
	}
	if err := r.dev.DrawPixels(seq); err != ErrInvalidColor {
		t.Fatalf("DrawPixels() = %v, want %v", err, ErrInvalidColor)
	}
	if pulled != 2 {
		t.Errorf("pulled %d pixels, want 2", pulled)
	}
	want := []uint8{0, 15, 15}
	for x, w := range want {
		if got, _ := r.dev.Pixel(x, 0); got != w {
			t.Errorf("Pixel(%d, 0) = %d, want %d", x, got, w)
		}
	}
}

func TestDrawImageInterface(t *testing.T) {
	r := newRig(t, &Opts{W: 8, H: 4})
	// Partially off the panel.
	draw.Draw(r.dev, image.Rect(6, 2, 20, 20), image.NewUniform(color.Black), image.Point{}, draw.Src)
	for _, tc := range []struct {
		x, y int
		want uint8
	}{
		{6, 2, 0},
		{7, 3, 0},
		{5, 2, 15},
		{6, 1, 15},
	} {
		if got, _ := r.dev.Pixel(tc.x, tc.y); got != tc.want {
			t.Errorf("Pixel(%d, %d) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
	r.dev.Set(100, 100, color.Black)
	if got := r.dev.At(7, 3); got != image4bit.Black {
		t.Errorf("At(7, 3) = %v, want Black", got)
	}
}

func TestDraw(t *testing.T) {
	r := newRig(t, &Opts{W: 8, H: 4})
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	if err := r.dev.Draw(image.Rect(4, 2, 12, 6), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.dev.Pixel(4, 2); got != 8 {
		t.Errorf("Pixel(4, 2) = %d, want 8", got)
	}
	if got, _ := r.dev.Pixel(3, 2); got != 15 {
		t.Errorf("Pixel(3, 2) = %d, want 15", got)
	}
	if err := r.dev.Draw(image.Rect(20, 20, 30, 30), src, image.Point{}); err != nil {
		t.Errorf("Draw() off panel = %v", err)
	}
}

func TestDrawFastPath(t *testing.T) {
	r := newRig(t, &Opts{W: 8, H: 2})
	src := image4bit.NewHorizontalNibble(r.dev.Bounds())
	src.Pix[3] = 0x5A
	if err := r.dev.Draw(r.dev.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if &src.Pix[0] == &r.dev.FrameBuffer().Pix[0] {
		t.Fatal("framebuffer aliased the source")
	}
	if got, _ := r.dev.Pixel(6, 0); got != 5 {
		t.Errorf("Pixel(6, 0) = %d, want 5", got)
	}
	if got, _ := r.dev.Pixel(0, 1); got != 0 {
		t.Errorf("Pixel(0, 1) = %d, want 0", got)
	}
}

func TestDrawText(t *testing.T) {
	r := newRig(t, &Opts{W: 64, H: 16})
	fd := font.Drawer{
		Dst:  r.dev,
		Src:  image.NewUniform(image4bit.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(-3, 12),
	}
	// The first glyph starts off the panel.
	fd.DrawString("EPD47")

	var black int
	for y := 0; y < 16; y++ {
		for x := 0; x < 64; x++ {
			if l, _ := r.dev.Pixel(x, y); l == 0 {
				black++
			}
		}
	}
	if black == 0 {
		t.Error("no text pixels were drawn")
	}
	if l, _ := r.dev.Pixel(63, 0); l != 15 {
		t.Errorf("Pixel(63, 0) = %d, want 15", l)
	}
}

func TestDrawGG(t *testing.T) {
	r := newRig(t, &Opts{W: 64, H: 32})
	ctx := gg.NewContext(64, 32)
	ctx.SetRGB(1, 1, 1)
	ctx.Clear()
	ctx.SetRGB(0, 0, 0)
	ctx.DrawRectangle(8, 8, 16, 8)
	ctx.Fill()
	if err := r.dev.Draw(r.dev.Bounds(), ctx.Image(), image.Point{}); err != nil {
		t.Fatal(err)
	}
	if l, _ := r.dev.Pixel(12, 12); l != 0 {
		t.Errorf("Pixel(12, 12) = %d, want 0", l)
	}
	if l, _ := r.dev.Pixel(0, 0); l != 15 {
		t.Errorf("Pixel(0, 0) = %d, want 15", l)
	}
}
