package croprotate

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Resample fills the output region out from the delivered input tile in.
// in may cover more than RequiredInput asked for.
func Resample(g *Geometry, in *Buffer, out Region) (*Buffer, error) {
	if err := out.validate(); err != nil {
		return nil, err
	}
	dst := NewBuffer(out)
	if err := ResampleInto(g, in, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// ResampleInto is like Resample but writes into dst, whose region is the
// requested output.
//
// Every output pixel is mapped back to the input with the inverse transform
// and interpolated bilinearly. Pixels whose 2x2 footprint is not fully
// inside in are black.
func ResampleInto(g *Geometry, in, dst *Buffer) error {
	if err := in.validate(); err != nil {
		return err
	}
	if err := dst.validate(); err != nil {
		return err
	}

	out := dst.Region
	so := out.Scale
	x0 := float64(out.X) + so*g.CIX
	y0 := float64(out.Y) + so*g.CIY

	// the transform is affine, so walking one pixel right or down always
	// moves the source coordinate by the same step
	p0 := g.source(x0, y0, so, in.Region)
	t := g.source(x0+1, y0, so, in.Region)
	dx := f64.Vec2{t[0] - p0[0], t[1] - p0[1]}
	t = g.source(x0, y0+1, so, in.Region)
	dy := f64.Vec2{t[0] - p0[0], t[1] - p0[1]}

	iw, ih := in.Region.Width, in.Region.Height
	rowStride := Channels * iw
	maxX, maxY := float64(iw-2), float64(ih-2)
	parallel(0, out.Height, func(rows <-chan int) {
		for j := range rows {
			o := dst.Pix[dst.PixOffset(0, j):dst.PixOffset(0, j+1)]
			pi := f64.Vec2{p0[0] + float64(j)*dy[0], p0[1] + float64(j)*dy[1]}
			for i := 0; i < out.Width; i++ {
				d := o[Channels*i : Channels*i+Channels : Channels*i+Channels]
				fx, fy := math.Floor(pi[0]), math.Floor(pi[1])
				if fx >= 0 && fy >= 0 && fx <= maxX && fy <= maxY {
					ii, jj := int(fx), int(fy)
					fi, fj := float32(pi[0]-fx), float32(pi[1]-fy)
					k := in.PixOffset(ii, jj)
					s00 := in.Pix[k : k+Channels : k+Channels]
					s01 := in.Pix[k+Channels : k+2*Channels : k+2*Channels]
					s10 := in.Pix[k+rowStride : k+rowStride+Channels : k+rowStride+Channels]
					s11 := in.Pix[k+rowStride+Channels : k+rowStride+2*Channels : k+rowStride+2*Channels]
					for c := range Channels {
						d[c] = (1-fj)*(1-fi)*s00[c] +
							(1-fj)*fi*s01[c] +
							fj*fi*s11[c] +
							fj*(1-fi)*s10[c]
					}
				} else {
					d[0], d[1], d[2] = 0, 0, 0
				}
				pi[0] += dx[0]
				pi[1] += dx[1]
			}
		}
	})
	return nil
}
