package croprotate

import "math"

// AspectPreset is a named crop aspect ratio.
type AspectPreset int

// Aspect presets.
const (
	AspectFree AspectPreset = iota
	AspectImage
	AspectGolden
	Aspect3x2
	Aspect4x3
	AspectSquare
	AspectDIN
)

var aspectNames = [...]string{
	AspectFree:   "free",
	AspectImage:  "image",
	AspectGolden: "golden cut",
	Aspect3x2:    "3:2",
	Aspect4x3:    "4:3",
	AspectSquare: "square",
	AspectDIN:    "din",
}

func (a AspectPreset) String() string {
	if a >= 0 && int(a) < len(aspectNames) {
		return aspectNames[a]
	}
	return "unknown"
}

// Ratio returns the width/height ratio of a for an image of the given size,
// or -1 for AspectFree. Landscape ratios are turned upright for portrait images.
func (a AspectPreset) Ratio(width, height int) float64 {
	var ratio float64
	switch a {
	case AspectImage:
		if width <= 0 || height <= 0 {
			return -1
		}
		return float64(width) / float64(height)
	case AspectGolden:
		ratio = 1.6280
	case Aspect3x2:
		ratio = 3. / 2
	case Aspect4x3:
		ratio = 4. / 3
	case AspectSquare:
		ratio = 1
	case AspectDIN:
		ratio = math.Sqrt2
	default:
		return -1
	}
	if height > width {
		ratio = 1 / ratio
	}
	return ratio
}
