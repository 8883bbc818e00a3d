package croprotate

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"golang.org/x/image/math/f64"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func nearBox(a, b Box) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.W, b.W) && near(a.H, b.H)
}

func TestHandleFromMask(t *testing.T) {
	for h := Move; h <= BottomLeft; h++ {
		got, err := HandleFromMask(h.Mask())
		if err != nil {
			t.Fatalf("%s: %v", h, err)
		}
		if got != h {
			t.Errorf("expected %s; got %s", h, got)
		}
	}
	for _, mask := range []uint8{EdgeLeft | EdgeRight, EdgeTop | EdgeBottom, EdgeLeft | EdgeTop | EdgeRight, 0xff} {
		if _, err := HandleFromMask(mask); !errors.Is(err, ErrUnknownHandle) {
			t.Errorf("mask %#x: expected ErrUnknownHandle; got %v", mask, err)
		}
	}
	if s := TopRight.String(); s != "top-right" {
		t.Errorf("expected top-right; got %s", s)
	}
	if s := Handle(42).String(); s != "Handle(42)" {
		t.Errorf("expected Handle(42); got %s", s)
	}
}

func TestHitTest(t *testing.T) {
	c := NewCropBox(200, 100)
	for _, tc := range []struct {
		p    f64.Vec2
		want Handle
	}{
		{f64.Vec2{.5, .5}, Move},
		{f64.Vec2{.01, .5}, Left},
		{f64.Vec2{.5, .05}, Top},
		{f64.Vec2{.99, .5}, Right},
		{f64.Vec2{.5, .95}, Bottom},
		{f64.Vec2{.01, .01}, TopLeft},
		{f64.Vec2{.99, .01}, TopRight},
		{f64.Vec2{.99, .99}, BottomRight},
		{f64.Vec2{.01, .99}, BottomLeft},
	} {
		if got := c.HitTest(tc.p, 10); got != tc.want {
			t.Errorf("%v: expected %s; got %s", tc.p, tc.want, got)
		}
	}

	// a box thinner than two borders resolves to the nearer edges
	c.state.Box = Box{X: .5, Y: .5, W: .05, H: .05}
	if got := c.HitTest(f64.Vec2{.51, .52}, 10); got != TopLeft {
		t.Errorf("expected top-left; got %s", got)
	}
	if got := c.HitTest(f64.Vec2{.54, .54}, 10); got != BottomRight {
		t.Errorf("expected bottom-right; got %s", got)
	}
}

func TestCropBoxDrag(t *testing.T) {
	c := NewCropBox(200, 100)
	if s := c.State(); s.Box != FullBox || s.Aspect != -1 || s.Dragging {
		t.Fatalf("unexpected initial state %+v", s)
	}
	if s := c.Update(f64.Vec2{.5, .5}); s.Box != FullBox {
		t.Fatalf("update without drag changed the box: %+v", s)
	}

	c.Begin(Right, f64.Vec2{1, .5})
	if s := c.Update(f64.Vec2{.6, .5}); !nearBox(s.Box, Box{0, 0, .6, 1}) || !s.Dragging || s.Handle != Right {
		t.Errorf("unexpected state after right drag: %+v", s)
	}
	if s := c.End(); s.Dragging {
		t.Error("still dragging after End")
	}

	// moving stops at the preview border
	c.Begin(Move, f64.Vec2{.3, .5})
	if s := c.Update(f64.Vec2{.9, .7}); !nearBox(s.Box, Box{.4, 0, .6, 1}) {
		t.Errorf("unexpected box after move: %+v", s.Box)
	}
	if s := c.Update(f64.Vec2{-.5, .5}); !nearBox(s.Box, Box{0, 0, .6, 1}) {
		t.Errorf("unexpected box after move: %+v", s.Box)
	}
	c.End()

	// edges keep the minimum size
	c.Begin(Left, f64.Vec2{0, .5})
	if s := c.Update(f64.Vec2{.95, .5}); !nearBox(s.Box, Box{.5, 0, .1, 1}) {
		t.Errorf("unexpected box after left drag: %+v", s.Box)
	}
	c.End()
	c.Begin(Top, f64.Vec2{.55, 0})
	if s := c.Update(f64.Vec2{.55, 2}); !nearBox(s.Box, Box{.5, .9, .1, .1}) {
		t.Errorf("unexpected box after top drag: %+v", s.Box)
	}
	c.End()

	// corners move two edges, keeping the grab offset
	c.Begin(BottomLeft, f64.Vec2{.52, .98})
	if s := c.Update(f64.Vec2{.02, 1.5}); !nearBox(s.Box, Box{0, .9, .6, .1}) {
		t.Errorf("unexpected box after corner drag: %+v", s.Box)
	}
	c.End()
	c.Begin(TopRight, f64.Vec2{.6, .9})
	if s := c.Update(f64.Vec2{.8, .2}); !nearBox(s.Box, Box{0, .2, .8, .8}) {
		t.Errorf("unexpected box after corner drag: %+v", s.Box)
	}
}

func TestCropBoxSetAspect(t *testing.T) {
	c := NewCropBox(200, 100)
	// a square on a 2:1 preview
	if s := c.SetAspect(1); !nearBox(s.Box, Box{.25, 0, .5, 1}) {
		t.Errorf("unexpected box for aspect 1: %+v", s.Box)
	}
	if s := c.SwapAspect(); s.Aspect != 1 || !nearBox(s.Box, Box{.25, 0, .5, 1}) {
		t.Errorf("unexpected state after swapping a square: %+v", s)
	}
	s := c.SetAspect(4)
	if !nearBox(s.Box, Box{.25, .375, .5, .25}) {
		t.Errorf("unexpected box for aspect 4: %+v", s.Box)
	}
	if s := c.SwapAspect(); s.Aspect != .25 {
		t.Errorf("expected aspect .25; got %g", s.Aspect)
	}

	free := NewCropBox(200, 100)
	if s := free.SwapAspect(); s.Aspect != -1 || s.Box != FullBox {
		t.Errorf("swapping without aspect changed the state: %+v", s)
	}
}

// Dragging with an aspect never yields a larger box than dragging freely,
// and always yields the exact aspect inside the preview.
func TestCropBoxAspectDrag(t *testing.T) {
	const width, height = 300, 200
	r := rand.New(rand.NewPCG(1, 2))
	for _, aspect := range []float64{.5, 1, 1.5, math.Sqrt2, 3} {
		for range 500 {
			start := NewCropBox(width, height)
			start.state.Box = Box{
				X: r.Float64() * .4, Y: r.Float64() * .4,
				W: .2 + r.Float64()*.4, H: .2 + r.Float64()*.4,
			}
			start.SetAspect(aspect)
			b := start.state.Box

			h := Handle(r.IntN(int(BottomLeft) + 1))
			press := f64.Vec2{b.X + b.W*r.Float64(), b.Y + b.H*r.Float64()}
			m := h.Mask()
			if m&EdgeLeft != 0 {
				press[0] = b.X
			}
			if m&EdgeRight != 0 {
				press[0] = b.X + b.W
			}
			if m&EdgeTop != 0 {
				press[1] = b.Y
			}
			if m&EdgeBottom != 0 {
				press[1] = b.Y + b.H
			}
			to := f64.Vec2{r.Float64()*1.4 - .2, r.Float64()*1.4 - .2}

			free := &CropBox{state: CropBoxState{Box: b, Aspect: -1}, width: width, height: height}
			free.Begin(h, press)
			fs := free.Update(to)
			start.Begin(h, press)
			s := start.Update(to)

			if got := s.W * width / (s.H * height); math.Abs(got-aspect) > 1e-9*aspect {
				t.Fatalf("%s drag from %+v to %v: expected aspect %g; got %g", h, b, to, aspect, got)
			}
			if s.W*s.H > fs.W*fs.H+1e-12 {
				t.Fatalf("%s drag from %+v to %v: area grew from %g to %g", h, b, to, fs.W*fs.H, s.W*s.H)
			}
			if s.X < -eps || s.Y < -eps || s.X+s.W > 1+eps || s.Y+s.H > 1+eps {
				t.Fatalf("%s drag from %+v to %v: box %+v leaves the preview", h, b, to, s.Box)
			}
		}
	}
}

func TestCropBoxCommit(t *testing.T) {
	c := NewCropBox(100, 100)
	c.state.Box = Box{X: .5, Y: .25, W: .5, H: .5}
	p := c.Commit(Params{CX: .1, CY: .2, CW: -.9, CH: .8, Aspect: -1})
	want := Params{CX: .5, CY: .35, CW: -.9, CH: .65, Aspect: -1}
	if !near(p.CX, want.CX) || !near(p.CY, want.CY) || !near(p.CW, want.CW) || !near(p.CH, want.CH) || p.Aspect != want.Aspect {
		t.Errorf("expected %+v; got %+v", want, p)
	}
	if err := p.Validate(); err != nil {
		t.Error(err)
	}
	if s := c.State(); s.Box != FullBox || s.Dragging || s.Handle != Move {
		t.Errorf("box not reset after commit: %+v", s)
	}

	// committing the full box changes nothing but the aspect
	c.SetAspect(1.5)
	c.state.Box = FullBox
	p = c.Commit(want)
	want.Aspect = 1.5
	if !near(p.CX, want.CX) || !near(p.CY, want.CY) || !near(p.CW, want.CW) || !near(p.CH, want.CH) || p.Aspect != want.Aspect {
		t.Errorf("expected %+v; got %+v", want, p)
	}
}

func TestCropBoxCommitFree(t *testing.T) {
	c := NewCropBox(300, 200)
	c.Begin(Left, f64.Vec2{0, .5})
	c.Update(f64.Vec2{.5, .5})
	c.End()
	p := c.Commit(DefaultParams(300, 200))
	if p.Aspect != -1.5 {
		t.Errorf("expected remembered aspect -1.5; got %g", p.Aspect)
	}
	if !near(p.CX, .5) || !near(p.CW, 1) {
		t.Errorf("unexpected crop (%g,%g)-(%g,%g)", p.CX, p.CY, p.CW, p.CH)
	}
}

func TestAspectPreset(t *testing.T) {
	for _, tc := range []struct {
		preset        AspectPreset
		width, height int
		want          float64
	}{
		{AspectFree, 300, 200, -1},
		{AspectImage, 300, 200, 1.5},
		{AspectImage, 200, 300, 2. / 3},
		{AspectImage, 0, 300, -1},
		{AspectGolden, 300, 200, 1.628},
		{Aspect3x2, 300, 200, 1.5},
		{Aspect3x2, 200, 300, 2. / 3},
		{Aspect4x3, 400, 300, 4. / 3},
		{AspectSquare, 200, 300, 1},
		{AspectDIN, 300, 200, math.Sqrt2},
		{AspectDIN, 200, 300, 1 / math.Sqrt2},
	} {
		if got := tc.preset.Ratio(tc.width, tc.height); !near(got, tc.want) {
			t.Errorf("%s on %dx%d: expected %g; got %g", tc.preset, tc.width, tc.height, tc.want, got)
		}
	}
	if s := AspectPreset(-1).String(); s != "unknown" {
		t.Errorf("expected unknown; got %s", s)
	}
}

func TestStraighten(t *testing.T) {
	tilt := math.Atan(.1) * 180 / math.Pi
	for _, tc := range []struct {
		a, b f64.Vec2
		base float64
		want float64
	}{
		{f64.Vec2{0, 0}, f64.Vec2{10, 1}, 0, -tilt},
		{f64.Vec2{10, 1}, f64.Vec2{0, 0}, 0, -tilt},
		{f64.Vec2{0, 0}, f64.Vec2{1, 10}, 0, tilt},
		{f64.Vec2{0, 0}, f64.Vec2{-1, 10}, 0, -tilt},
		{f64.Vec2{0, 0}, f64.Vec2{10, 0}, 12, 12},
		{f64.Vec2{0, 0}, f64.Vec2{10, -1}, 179, tilt + 179 - 360},
		{f64.Vec2{0, 0}, f64.Vec2{10, 1}, -179, -tilt - 179 + 360},
	} {
		if got := Straighten(tc.a, tc.b, tc.base); !near(got, tc.want) {
			t.Errorf("%v to %v from %g: expected %g; got %g", tc.a, tc.b, tc.base, tc.want, got)
		}
	}
}
