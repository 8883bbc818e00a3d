package croprotate

import "errors"

// SplitMode defines the direction in which a region is split into tiles.
type SplitMode int

const (
	// SplitHorizontalMode splits the region into side by side columns.
	SplitHorizontalMode SplitMode = iota
	// SplitVerticalMode splits the region into stacked rows.
	SplitVerticalMode
)

// SplitRegion splits r into n tiles that cover r exactly. The last tile
// takes the remainder when the size is not divisible by n.
func SplitRegion(r Region, n int, mode SplitMode) (tiles []Region, err error) {
	if n < 1 {
		return nil, errors.New("invalid number of tiles: must be at least 1")
	}
	size := r.Height
	if mode == SplitHorizontalMode {
		size = r.Width
	}
	step := size / n
	if step == 0 {
		return nil, errors.New("failed to split the region: invalid dimensions or n is too large")
	}
	for i := range n {
		t := r
		end := step * (i + 1)
		if i == n-1 {
			end = size
		}
		if mode == SplitHorizontalMode {
			t.X, t.Width = r.X+step*i, end-step*i
		} else {
			t.Y, t.Height = r.Y+step*i, end-step*i
		}
		tiles = append(tiles, t)
	}
	return
}
