package croprotate

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Channels is the number of interleaved channels per pixel of a Buffer.
const Channels = 3

// ErrBufferSize is returned when a Buffer's pixel slice does not match its region.
var ErrBufferSize = errors.New("buffer size does not match region")

// Buffer is a tile of RGB pixels stored as interleaved float32 values in
// [0,1], row-major, covering Region.
type Buffer struct {
	Pix    []float32
	Region Region
}

// NewBuffer returns a zero filled buffer covering r.
func NewBuffer(r Region) *Buffer {
	return &Buffer{Pix: make([]float32, Channels*max(0, r.Width)*max(0, r.Height)), Region: r}
}

// PixOffset returns the index of the first channel of the pixel at (x, y),
// relative to the buffer origin.
func (b *Buffer) PixOffset(x, y int) int {
	return Channels * (b.Region.Width*y + x)
}

func (b *Buffer) validate() error {
	if err := b.Region.validate(); err != nil {
		return err
	}
	if n := Channels * b.Region.Width * b.Region.Height; len(b.Pix) != n {
		return fmt.Errorf("%w: have %d values, want %d for %s", ErrBufferSize, len(b.Pix), n, b.Region)
	}
	return nil
}

// Extract delivers the part of src covered by r as a Buffer. src is taken
// to be at the scale of r with its top-left corner at the origin. Pixels of r
// outside src are zero. The alpha channel is dropped.
func Extract(src image.Image, r Region) *Buffer {
	b := NewBuffer(r)
	img := toNRGBA(src)
	area := r.Rect().Intersect(img.Rect)
	parallel(area.Min.Y, area.Max.Y, func(ys <-chan int) {
		for y := range ys {
			i := img.PixOffset(area.Min.X, y)
			j := b.PixOffset(area.Min.X-r.X, y-r.Y)
			for range area.Dx() {
				s := img.Pix[i : i+4 : i+4]
				d := b.Pix[j : j+Channels : j+Channels]
				d[0] = float32(s[0]) / 255
				d[1] = float32(s[1]) / 255
				d[2] = float32(s[2]) / 255
				i += 4
				j += Channels
			}
		}
	})
	return b
}

// Image converts b to an opaque NRGBA image with bounds at the origin.
func (b *Buffer) Image() *image.NRGBA {
	w, h := max(0, b.Region.Width), max(0, b.Region.Height)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	parallel(0, h, func(ys <-chan int) {
		for y := range ys {
			i := dst.PixOffset(0, y)
			j := b.PixOffset(0, y)
			for range w {
				d := dst.Pix[i : i+4 : i+4]
				s := b.Pix[j : j+Channels : j+Channels]
				d[0] = clamp(float64(s[0]) * 255)
				d[1] = clamp(float64(s[1]) * 255)
				d[2] = clamp(float64(s[2]) * 255)
				d[3] = 0xff
				i += 4
				j += Channels
			}
		}
	})
	return dst
}

// toNRGBA returns img as an NRGBA image with bounds at the origin,
// sharing pixels when img already is one.
func toNRGBA(img image.Image) *image.NRGBA {
	if img, ok := img.(*image.NRGBA); ok {
		return &image.NRGBA{
			Pix:    img.Pix,
			Stride: img.Stride,
			Rect:   img.Rect.Sub(img.Rect.Min),
		}
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
