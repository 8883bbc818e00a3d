package croprotate

import (
	"math"

	"golang.org/x/image/math/f64"
)

// RequiredInput returns the smallest input region, at the scale of out,
// from which out can be resampled. The corners of out are mapped back
// through the inverse transform and their bounding box is padded by two
// pixels on every side for the bilinear footprint.
//
// out is expected to lie within the output predicted by Compile.
func (g *Geometry) RequiredInput(out Region) Region {
	so := out.Scale
	// this box is set off by the crop origin
	x0 := float64(out.X) + g.CIX*so
	y0 := float64(out.Y) + g.CIY*so
	aabb := [4]float64{x0, y0, x0 + float64(out.Width), y0 + float64(out.Height)}
	in := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for c := range 4 {
		p := corner(aabb, c)
		p[0] -= g.TX * so
		p[1] -= g.TY * so
		o := g.M.Apply(p)
		o[0] += g.TX * so
		o[1] += g.TY * so
		adjustAABB(o, &in)
	}

	x := int(math.Floor(in[0]))
	y := int(math.Floor(in[1]))
	return Region{
		X:      x - 2,
		Y:      y - 2,
		Width:  int(math.Ceil(in[2])) - x + 4,
		Height: int(math.Ceil(in[3])) - y + 4,
		Scale:  so,
	}
}

// source maps the output pixel (px, py), given in output-buffer coordinates
// at scale so, to the input buffer described by in.
func (g *Geometry) source(px, py, so float64, in Region) f64.Vec2 {
	si := in.Scale
	p := f64.Vec2{(px - g.TX*so) / so, (py - g.TY*so) / so}
	o := g.M.Apply(p)
	o[0] = o[0]*si + g.TX*si - float64(in.X)
	o[1] = o[1]*si + g.TY*si - float64(in.Y)
	return o
}
