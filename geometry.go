package croprotate

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Flip is a set of mirror flags.
type Flip uint32

// Mirror flags.
const (
	FlipHorizontal Flip = 1 << iota
	FlipVertical
)

// Mat2 is a row-major 2x2 linear map.
type Mat2 [4]float64

// Apply returns m times p.
func (m Mat2) Apply(p f64.Vec2) f64.Vec2 {
	return f64.Vec2{p[0]*m[0] + p[1]*m[1], p[0]*m[2] + p[1]*m[3]}
}

// Geometry is the compiled form of Params for one input size.
// It is rebuilt whenever the parameters or the input size change and is
// never modified afterwards, so it may be shared by concurrent resamplers.
type Geometry struct {
	Angle     float64 // rotation in radians
	M         Mat2    // output to input direction map, flips included
	TX, TY    float64 // rotation center in whole-buffer coordinates
	CropScale float64

	// crop window as requested, |CW|, |CH| already taken
	CX, CY, CW, CH float64
	Aspect         float64

	// crop window on the output buffer at scale 1
	CIX, CIY, CIW, CIH float64

	Flags Flip

	width, height int
	output        Region
}

// Compile derives the rotation, crop and output size of p applied to an
// input buffer of width x height pixels.
func Compile(p Params, width, height int) (*Geometry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: input size %dx%d", ErrInvalidRegion, width, height)
	}

	g := &Geometry{
		Angle:  p.Angle * math.Pi / 180,
		CX:     p.CX,
		CY:     p.CY,
		CW:     math.Abs(p.CW),
		CH:     math.Abs(p.CH),
		Aspect: p.Aspect,
		width:  width,
		height: height,
	}
	if p.CW < 0 {
		g.Flags |= FlipHorizontal
	}
	if p.CH < 0 {
		g.Flags |= FlipVertical
	}
	g.compile(rotation(p.Angle))

	logger().Debug("geometry compiled",
		"angle", p.Angle, "cropscale", g.CropScale, "flags", g.Flags, "output", g.output)
	return g, nil
}

// rotation returns the rotation matrix for deg degrees. Multiples of 90
// degrees are exact so that quarter turns and the identity carry no
// trigonometric round-off.
func rotation(deg float64) Mat2 {
	if math.Mod(deg, 90) == 0 {
		switch (int(math.Mod(deg/90, 4)) + 4) % 4 {
		case 1:
			return Mat2{0, -1, 1, 0}
		case 2:
			return Mat2{-1, 0, 0, -1}
		case 3:
			return Mat2{0, 1, -1, 0}
		default:
			return Mat2{1, 0, 0, 1}
		}
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Mat2{cos, -sin, sin, cos}
}

// corner returns corner i (0..3) of the box {x0, y0, x1, y1}.
func corner(aabb [4]float64, i int) (p f64.Vec2) {
	for k := range 2 {
		p[k] = aabb[2*((i>>k)&1)+k]
	}
	return
}

func adjustAABB(p f64.Vec2, aabb *[4]float64) {
	aabb[0] = math.Min(aabb[0], p[0])
	aabb[1] = math.Min(aabb[1], p[1])
	aabb[2] = math.Max(aabb[2], p[0])
	aabb[3] = math.Max(aabb[3], p[1])
}

// cropScale returns the largest factor <= 1 by which the centered box of
// width x height, rotated by rt, has to be shrunk to fit the unrotated box.
func cropScale(rt Mat2, width, height float64) float64 {
	scale := 1.0
	aabb := [4]float64{-.5 * width, -.5 * height, .5 * width, .5 * height}
	for c := range 4 {
		o := rt.Apply(corner(aabb, c))
		for k := range 2 {
			if math.Abs(o[k]) > 0.001 {
				bound := aabb[k]
				if o[k] > 0 {
					bound = aabb[2+k]
				}
				scale = math.Min(scale, bound/o[k])
			}
		}
	}
	return scale
}

// toPixels truncates v like an integer conversion but forgives the
// round-off left by products of normalized coordinates.
func toPixels(v float64) int {
	return int(math.Floor(v + 1e-6))
}

func (g *Geometry) compile(rt Mat2) {
	w, h := float64(g.width), float64(g.height)
	g.CropScale = cropScale(rt, w, h)

	g.TX = w * .5
	g.TY = h * .5

	// enforce aspect ratio, only make the area smaller
	acw, ach := g.CW-g.CX, g.CH-g.CY
	if g.Aspect > 0 {
		ch := acw * w / g.Aspect / h
		cw := g.Aspect * ach * h / w
		switch {
		case acw >= cw:
			acw = cw
		case ach >= ch:
			ach = ch
		default:
			// reachable only through floating point ties
			acw *= ach / ch
		}
	}

	out := Region{
		X:      toPixels(g.TX - (.5-g.CX)*g.CropScale*w),
		Y:      toPixels(g.TY - (.5-g.CY)*g.CropScale*h),
		Width:  max(1, toPixels(acw*g.CropScale*w)),
		Height: max(1, toPixels(ach*g.CropScale*h)),
		Scale:  1,
	}
	g.output = out
	g.CIX, g.CIY = float64(out.X), float64(out.Y)
	g.CIW, g.CIH = float64(out.Width), float64(out.Height)

	rt[1], rt[2] = -rt[1], -rt[2]
	g.M = rt
	if g.Flags&FlipHorizontal != 0 {
		g.M[0], g.M[2] = -rt[0], -rt[2]
	}
	if g.Flags&FlipVertical != 0 {
		g.M[1], g.M[3] = -rt[1], -rt[3]
	}
}

// InputSize returns the whole-buffer input size g was compiled for.
func (g *Geometry) InputSize() (width, height int) {
	return g.width, g.height
}

// Output returns the predicted output region at scale 1. X and Y locate the
// crop window in whole-buffer coordinates.
func (g *Geometry) Output() Region {
	return g.output
}

// OutputRegion returns the request for the whole output image at the given
// scale. Requests are relative to the output image, so X and Y are zero.
func (g *Geometry) OutputRegion(scale float64) Region {
	return Region{
		Width:  max(1, toPixels(g.CIW*scale)),
		Height: max(1, toPixels(g.CIH*scale)),
		Scale:  scale,
	}
}
