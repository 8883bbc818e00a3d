package croprotate

import (
	"image"
	"io"
	"path/filepath"
	"reflect"
)

var defaultFormat = FormatOption{Format: JPEG}

// Options represents options that can be used to configure a image operation.
type Options struct {
	Transform *TransformOption
	Format    FormatOption
}

// NewOptions creates a new option with default setting.
func NewOptions() Options {
	return Options{Format: defaultFormat}
}

func (opts *Options) transform() *TransformOption {
	if opts.Transform == nil {
		opts.Transform = &TransformOption{Params: Params{CW: 1, CH: 1, Aspect: -1}}
	}
	return opts.Transform
}

// SetParams sets all transform parameters at once.
func (opts *Options) SetParams(p Params) *Options {
	opts.transform().Params = p
	return opts
}

// SetRotate sets the rotation angle in degrees.
func (opts *Options) SetRotate(angle float64) *Options {
	opts.transform().Params.Angle = angle
	return opts
}

// SetCrop sets the normalized crop window by its top-left (x0, y0) and
// bottom-right (x1, y1) corners, keeping the flip state.
func (opts *Options) SetCrop(x0, y0, x1, y1 float64) *Options {
	p := &opts.transform().Params
	h, v := p.Flip()
	p.CX, p.CY, p.CW, p.CH = x0, y0, x1, y1
	p.SetFlip(h, v)
	return opts
}

// SetFlip sets the horizontal and vertical mirror flags.
func (opts *Options) SetFlip(horizontal, vertical bool) *Options {
	opts.transform().Params.SetFlip(horizontal, vertical)
	return opts
}

// SetAspect sets the forced width/height ratio of the crop. Values <= 0
// leave it unconstrained.
func (opts *Options) SetAspect(aspect float64) *Options {
	opts.transform().Params.Aspect = aspect
	return opts
}

// SetScale sets the output scale, in (0,1].
func (opts *Options) SetScale(scale float64) *Options {
	opts.transform().Scale = scale
	return opts
}

// SetTiles sets the number of row strips the output is produced in.
func (opts *Options) SetTiles(n int) *Options {
	opts.transform().Tiles = n
	return opts
}

// SetFormat sets the value for the Format field.
func (opts *Options) SetFormat(f string, options ...EncodeOption) (err error) {
	opts.Format, err = setFormat(f, options...)
	return
}

// Convert image according options opts.
func (opts *Options) Convert(w io.Writer, base image.Image) error {
	if opts.Transform != nil {
		img, err := opts.Transform.do(base)
		if err != nil {
			return err
		}
		base = img
	}

	if reflect.DeepEqual(opts.Format, FormatOption{}) {
		opts.Format = defaultFormat
	}

	return opts.Format.Encode(w, base)
}

// ConvertExt convert filename's ext according image format.
func (opts *Options) ConvertExt(filename string) string {
	return filename[0:len(filename)-len(filepath.Ext(filename))] + "." + formatExts[opts.Format.Format]
}
