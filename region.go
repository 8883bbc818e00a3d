package croprotate

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidRegion is returned when a Region has a non-positive size or scale.
var ErrInvalidRegion = errors.New("invalid region")

// Region is an axis-aligned rectangle of a buffer together with the scale
// that relates it to the whole-buffer coordinate space.
type Region struct {
	X, Y          int
	Width, Height int
	Scale         float64
}

// Rect returns the rectangle covered by r.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether r covers no pixel.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the largest region contained by both r and s.
// The scale of r is kept.
func (r Region) Intersect(s Region) Region {
	i := r.Rect().Intersect(s.Rect())
	return Region{X: i.Min.X, Y: i.Min.Y, Width: i.Dx(), Height: i.Dy(), Scale: r.Scale}
}

// Contains reports whether s lies completely inside r.
func (r Region) Contains(s Region) bool {
	return s.Rect().In(r.Rect())
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)@%g", r.X, r.Y, r.Width, r.Height, r.Scale)
}

func (r Region) validate() error {
	if r.Empty() || !(r.Scale > 0) {
		return fmt.Errorf("%w: %s", ErrInvalidRegion, r)
	}
	return nil
}
