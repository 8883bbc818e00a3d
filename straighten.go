package croprotate

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Straighten returns the rotation angle in degrees that levels the line
// dragged from a to b over the preview, given the angle base in effect when
// the drag started. Lines steeper than 45 degrees are made vertical, the
// others horizontal. The result is wrapped into [-180, 180].
func Straighten(a, b f64.Vec2, base float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	if dx < 0 {
		dx, dy = -dx, -dy
	}
	angle := math.Atan2(dy, dx)

	var correction float64
	switch {
	case angle > math.Pi/4:
		correction = math.Pi/2 - angle
	case angle < -math.Pi/4:
		correction = -math.Pi/2 - angle
	default:
		correction = -angle
	}

	deg := correction*180/math.Pi + base
	if deg < -180 {
		deg += 360
	}
	if deg > 180 {
		deg -= 360
	}
	return deg
}
