package croprotate

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// TransformOption is crop and rotate option.
type TransformOption struct {
	Params Params
	// Scale of the output relative to the input, in (0,1]. Zero means 1.
	Scale float64
	// Tiles is the number of row strips processed one after another.
	// Zero means the whole output at once.
	Tiles int
}

// Transform crops, rotates and flips base according option.
func Transform(base image.Image, option *TransformOption) (*image.NRGBA, error) {
	return option.do(base)
}

func (t *TransformOption) scale() float64 {
	if t.Scale <= 0 || t.Scale > 1 {
		return 1
	}
	return t.Scale
}

func (t *TransformOption) do(base image.Image) (*image.NRGBA, error) {
	size := base.Bounds().Size()
	g, err := Compile(t.Params, size.X, size.Y)
	if err != nil {
		return nil, err
	}

	scale := t.scale()
	var src image.Image = base
	if scale != 1 {
		src = imaging.Resize(
			base,
			max(1, int(math.Round(float64(size.X)*scale))),
			max(1, int(math.Round(float64(size.Y)*scale))),
			imaging.Linear,
		)
	}

	// decoded images are rarely NRGBA, convert once for all tiles
	img := toNRGBA(src)

	out := g.OutputRegion(scale)
	tiles := []Region{out}
	// strips are at least one row high
	if n := min(t.Tiles, out.Height); n > 1 {
		if tiles, err = SplitRegion(out, n, SplitVerticalMode); err != nil {
			return nil, err
		}
	}

	dst := NewBuffer(out)
	for _, tile := range tiles {
		in := g.RequiredInput(tile)
		logger().Debug("tile negotiated", "output", tile, "input", in)

		res, err := Resample(g, Extract(img, in), tile)
		if err != nil {
			return nil, err
		}
		dst.paste(res)
	}
	return dst.Image(), nil
}

// paste copies the part of src overlapping b into b.
func (b *Buffer) paste(src *Buffer) {
	r := b.Region.Intersect(src.Region)
	if r.Empty() {
		return
	}
	for y := r.Y; y < r.Y+r.Height; y++ {
		i := b.PixOffset(r.X-b.Region.X, y-b.Region.Y)
		j := src.PixOffset(r.X-src.Region.X, y-src.Region.Y)
		copy(b.Pix[i:i+Channels*r.Width], src.Pix[j:j+Channels*r.Width])
	}
}
