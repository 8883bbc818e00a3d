package croprotate

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// ErrUnknownHandle is returned for edge masks that name no handle,
// such as two opposite edges.
var ErrUnknownHandle = errors.New("unknown crop box handle")

// Handle identifies the part of the crop box grabbed by the pointer.
type Handle uint8

// Crop box handles.
const (
	Move Handle = iota
	Left
	Top
	Right
	Bottom
	TopLeft
	TopRight
	BottomRight
	BottomLeft
)

// Edge bits of a handle mask.
const (
	EdgeLeft uint8 = 1 << iota
	EdgeTop
	EdgeRight
	EdgeBottom
)

var handleMasks = [...]uint8{
	Move:        0,
	Left:        EdgeLeft,
	Top:         EdgeTop,
	Right:       EdgeRight,
	Bottom:      EdgeBottom,
	TopLeft:     EdgeLeft | EdgeTop,
	TopRight:    EdgeTop | EdgeRight,
	BottomRight: EdgeRight | EdgeBottom,
	BottomLeft:  EdgeBottom | EdgeLeft,
}

var handleNames = [...]string{
	Move:        "move",
	Left:        "left",
	Top:         "top",
	Right:       "right",
	Bottom:      "bottom",
	TopLeft:     "top-left",
	TopRight:    "top-right",
	BottomRight: "bottom-right",
	BottomLeft:  "bottom-left",
}

// HandleFromMask returns the handle for a set of grabbed edges.
// An empty mask moves the whole box.
func HandleFromMask(mask uint8) (Handle, error) {
	for h, m := range handleMasks {
		if m == mask {
			return Handle(h), nil
		}
	}
	return Move, fmt.Errorf("%w: mask %#x", ErrUnknownHandle, mask)
}

// Mask returns the edges moved by h.
func (h Handle) Mask() uint8 {
	if int(h) < len(handleMasks) {
		return handleMasks[h]
	}
	return 0
}

func (h Handle) String() string {
	if int(h) < len(handleNames) {
		return handleNames[h]
	}
	return fmt.Sprintf("Handle(%d)", h)
}

// Box is a rectangle normalized to [0,1] relative to the preview buffer.
type Box struct {
	X, Y, W, H float64
}

// FullBox covers the whole preview.
var FullBox = Box{W: 1, H: 1}

// CropBoxState is what the user interface renders as overlay.
type CropBoxState struct {
	Box
	// Aspect is the enforced width/height ratio in preview pixels, <= 0 for none.
	Aspect   float64
	Handle   Handle
	Dragging bool
}

const minBoxSize = 0.1

// CropBox models the interactive crop box drawn over a preview buffer.
//
// A CropBox is not safe for concurrent use.
type CropBox struct {
	state         CropBoxState
	width, height float64

	press  f64.Vec2 // pointer position at Begin
	handle f64.Vec2 // pointer offset from the grabbed edges
}

// NewCropBox returns a full-frame crop box over a preview of the given size
// in pixels, without aspect constraint.
func NewCropBox(width, height int) *CropBox {
	return &CropBox{
		state:  CropBoxState{Box: FullBox, Aspect: -1},
		width:  float64(width),
		height: float64(height),
	}
}

// State returns the current state.
func (c *CropBox) State() CropBoxState {
	return c.state
}

// Resize tells the crop box about a new preview size.
func (c *CropBox) Resize(width, height int) {
	c.width, c.height = float64(width), float64(height)
}

// HitTest returns the handle under the normalized pointer position p. The
// edges are border preview pixels wide. Anywhere else the box is moved.
func (c *CropBox) HitTest(p f64.Vec2, border float64) Handle {
	b := c.state.Box
	wd, ht := c.width, c.height
	var mask uint8
	if p[0] >= b.X && p[0]*wd < b.X*wd+border {
		mask |= EdgeLeft
	}
	if p[1] >= b.Y && p[1]*ht < b.Y*ht+border {
		mask |= EdgeTop
	}
	if p[0] <= b.X+b.W && p[0]*wd > (b.X+b.W)*wd-border {
		mask |= EdgeRight
	}
	if p[1] <= b.Y+b.H && p[1]*ht > (b.Y+b.H)*ht-border {
		mask |= EdgeBottom
	}
	// a box thinner than two borders: keep the nearer edge
	if mask&(EdgeLeft|EdgeRight) == EdgeLeft|EdgeRight {
		if p[0]-b.X <= b.X+b.W-p[0] {
			mask &^= EdgeRight
		} else {
			mask &^= EdgeLeft
		}
	}
	if mask&(EdgeTop|EdgeBottom) == EdgeTop|EdgeBottom {
		if p[1]-b.Y <= b.Y+b.H-p[1] {
			mask &^= EdgeBottom
		} else {
			mask &^= EdgeTop
		}
	}
	h, _ := HandleFromMask(mask)
	return h
}

// Begin starts dragging handle h with the pointer at p.
func (c *CropBox) Begin(h Handle, p f64.Vec2) {
	b := c.state.Box
	c.state.Handle = h
	c.state.Dragging = true
	c.press = p
	c.handle = f64.Vec2{}
	if h == Move {
		c.handle = f64.Vec2{b.X, b.Y}
		return
	}
	m := h.Mask()
	if m&EdgeLeft != 0 {
		c.handle[0] = p[0] - b.X
	}
	if m&EdgeTop != 0 {
		c.handle[1] = p[1] - b.Y
	}
	if m&EdgeRight != 0 {
		c.handle[0] = p[0] - (b.X + b.W)
	}
	if m&EdgeBottom != 0 {
		c.handle[1] = p[1] - (b.Y + b.H)
	}
}

// Update moves the grabbed handle to the pointer position p. Edges keep the
// box at least 0.1 wide and high and inside [0,1].
func (c *CropBox) Update(p f64.Vec2) CropBoxState {
	if !c.state.Dragging {
		return c.state
	}
	switch c.state.Handle {
	case Move:
		c.move(p)
	case Left:
		c.dragLeft(p[0])
	case Top:
		c.dragTop(p[1])
	case Right:
		c.dragRight(p[0])
	case Bottom:
		c.dragBottom(p[1])
	case TopLeft:
		c.dragTop(p[1])
		c.dragLeft(p[0])
	case TopRight:
		c.dragTop(p[1])
		c.dragRight(p[0])
	case BottomRight:
		c.dragBottom(p[1])
		c.dragRight(p[0])
	case BottomLeft:
		c.dragBottom(p[1])
		c.dragLeft(p[0])
	}
	c.applyAspect(c.state.Handle)
	return c.state
}

// End finishes the drag gesture.
func (c *CropBox) End() CropBoxState {
	c.state.Dragging = false
	return c.state
}

func (c *CropBox) move(p f64.Vec2) {
	b := &c.state.Box
	b.X = clampf(c.handle[0]+p[0]-c.press[0], 0, 1-b.W)
	b.Y = clampf(c.handle[1]+p[1]-c.press[1], 0, 1-b.H)
}

func (c *CropBox) dragLeft(x float64) {
	b := &c.state.Box
	right := b.X + b.W
	b.X = clampf(x-c.handle[0], 0, right-minBoxSize)
	b.W = right - b.X
}

func (c *CropBox) dragTop(y float64) {
	b := &c.state.Box
	bottom := b.Y + b.H
	b.Y = clampf(y-c.handle[1], 0, bottom-minBoxSize)
	b.H = bottom - b.Y
}

func (c *CropBox) dragRight(x float64) {
	b := &c.state.Box
	b.W = clampf(x-b.X-c.handle[0], minBoxSize, 1-b.X)
}

func (c *CropBox) dragBottom(y float64) {
	b := &c.state.Box
	b.H = clampf(y-b.Y-c.handle[1], minBoxSize, 1-b.Y)
}

// SetAspect sets the enforced width/height ratio, <= 0 for none, and fits
// the box to it around its center.
func (c *CropBox) SetAspect(aspect float64) CropBoxState {
	c.state.Aspect = aspect
	c.applyAspect(Move)
	return c.state
}

// SwapAspect exchanges the sides of the enforced aspect ratio.
func (c *CropBox) SwapAspect() CropBoxState {
	if c.state.Aspect > 0 {
		return c.SetAspect(1 / c.state.Aspect)
	}
	return c.state
}

// applyAspect fits the box to the enforced aspect ratio after handle h was
// moved. The area of the box never grows and the box stays inside [0,1].
func (c *CropBox) applyAspect(h Handle) {
	aspect := c.state.Aspect
	if aspect <= 0 || c.width <= 0 || c.height <= 0 {
		return
	}
	b := &c.state.Box
	// a box of width w satisfies the aspect with height w*r
	r := c.width / (c.height * aspect)
	area := b.W * b.H

	switch h {
	case TopLeft, TopRight, BottomRight, BottomLeft:
		// meet the target halfway, anchored at the opposite corner
		w := (b.H/r + b.W) * .5
		if w*w*r > area {
			w = math.Sqrt(area / r)
		}
		m := h.Mask()
		ax, ay := b.X, b.Y
		maxW, maxH := 1-b.X, 1-b.Y
		if m&EdgeLeft != 0 {
			ax = b.X + b.W
			maxW = ax
		}
		if m&EdgeTop != 0 {
			ay = b.Y + b.H
			maxH = ay
		}
		w = fitWidth(w, r, maxW, maxH)
		b.W, b.H = w, w*r
		if m&EdgeLeft != 0 {
			b.X = ax - b.W
		}
		if m&EdgeTop != 0 {
			b.Y = ay - b.H
		}

	case Left, Right, Move:
		// the height follows the width and stays centered
		w := b.W
		if w*r > b.H {
			w = math.Sqrt(area / r)
		}
		cx, cy := b.X+b.W*.5, b.Y+b.H*.5
		maxW := 1.0
		switch h {
		case Left:
			maxW = b.X + b.W
		case Right:
			maxW = 1 - b.X
		}
		w = fitWidth(w, r, maxW, 1)
		switch h {
		case Left:
			b.X = b.X + b.W - w
		case Move:
			b.X = clampf(cx-w*.5, 0, 1-w)
		}
		b.W, b.H = w, w*r
		b.Y = clampf(cy-b.H*.5, 0, 1-b.H)

	case Top, Bottom:
		// the width follows the height and stays centered
		ht := b.H
		if ht > b.W*r {
			ht = math.Sqrt(area * r)
		}
		cx := b.X + b.W*.5
		maxH := 1 - b.Y
		if h == Top {
			maxH = b.Y + b.H
		}
		w := fitWidth(ht/r, r, 1, maxH)
		if h == Top {
			b.Y = b.Y + b.H - w*r
		}
		b.W, b.H = w, w*r
		b.X = clampf(cx-b.W*.5, 0, 1-b.W)
	}
}

// fitWidth shrinks the width w of a box with height w*r until the box fits
// into maxW x maxH. Negative room is treated as none.
func fitWidth(w, r, maxW, maxH float64) float64 {
	w = math.Max(0, math.Min(w, maxW))
	if w*r > maxH {
		w = math.Max(0, maxH) / r
	}
	return w
}

func clampf(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Commit folds the box into the crop window of p, composing with the crop
// already there, and resets the box to full frame. An enforced aspect
// replaces p.Aspect, a free box keeps the one p remembers.
func (c *CropBox) Commit(p Params) Params {
	b := c.state.Box
	cx, cy := p.CX, p.CY
	cw, ch := math.Abs(p.CW), math.Abs(p.CH)
	p.CX += b.X * (cw - cx)
	p.CY += b.Y * (ch - cy)
	p.CW = math.Copysign(p.CX+(cw-cx)*b.W, p.CW)
	p.CH = math.Copysign(p.CY+(ch-cy)*b.H, p.CH)
	if c.state.Aspect > 0 {
		p.Aspect = c.state.Aspect
	}

	c.state.Box = FullBox
	c.state.Handle = Move
	c.state.Dragging = false
	return p
}
