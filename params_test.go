package croprotate

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams(300, 200)
	if p.CX != 0 || p.CY != 0 || p.CW != 1 || p.CH != 1 || p.Angle != 0 {
		t.Errorf("expected full frame; got %+v", p)
	}
	if p.Aspect != -1.5 {
		t.Errorf("expected unenforced aspect -1.5; got %g", p.Aspect)
	}
	if p := DefaultParams(0, 0); p.Aspect != -1 {
		t.Errorf("expected aspect -1; got %g", p.Aspect)
	}
}

func TestFlip(t *testing.T) {
	p := Params{CX: .1, CY: .2, CW: .8, CH: .9}
	for _, tc := range [][2]bool{{true, false}, {false, true}, {true, true}, {false, false}} {
		p.SetFlip(tc[0], tc[1])
		if h, v := p.Flip(); h != tc[0] || v != tc[1] {
			t.Errorf("expected flip %v; got %v, %v", tc, h, v)
		}
		if math.Abs(p.CW) != .8 || math.Abs(p.CH) != .9 {
			t.Errorf("flip changed the crop window: %+v", p)
		}
	}
}

func TestValidate(t *testing.T) {
	for i, p := range []Params{
		{CW: 1, CH: 1},
		{CX: .2, CY: .3, CW: -.4, CH: -.5, Aspect: 2},
		{Angle: 720, CW: 1, CH: 1, Aspect: -3},
	} {
		if err := p.Validate(); err != nil {
			t.Errorf("#%d want no error, got %v", i, err)
		}
	}
	for i, p := range []Params{
		{},
		{CX: -.1, CW: 1, CH: 1},
		{CY: .5, CW: 1, CH: .5},
		{CX: .6, CW: -.5, CH: 1},
		{CW: 1.01, CH: 1},
		{CW: 1, CH: math.Inf(-1)},
		{Angle: math.NaN(), CW: 1, CH: 1},
		{CW: 1, CH: 1, Aspect: math.Inf(1)},
	} {
		if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("#%d want ErrInvalidParams, got %v", i, err)
		}
	}
}

func TestMarshalParams(t *testing.T) {
	p := Params{Angle: -3.25, CX: .1, CY: .2, CW: -.9, CH: .8, Aspect: 1.5}
	b, err := MarshalParams(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalParams(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("expected %+v; got %+v", p, got)
	}
}

func TestUnmarshalParams(t *testing.T) {
	p, err := UnmarshalParams([]byte(`{"version":1,"params":{"angle":5,"cx":0.1,"cy":0,"cw":-1,"ch":0.5}}`))
	if err != nil {
		t.Fatal(err)
	}
	if want := (Params{Angle: 5, CX: .1, CW: -1, CH: .5, Aspect: -1}); p != want {
		t.Errorf("expected %+v; got %+v", want, p)
	}

	for i, tc := range []struct {
		data string
		err  error
	}{
		{`{"version":3,"params":{}}`, ErrUnsupportedVersion},
		{`{"params":{"cw":1,"ch":1}}`, ErrUnsupportedVersion},
		{`{"version":2,"params":{"cx":0.5,"cw":0.5,"ch":1}}`, ErrInvalidParams},
	} {
		if _, err := UnmarshalParams([]byte(tc.data)); !errors.Is(err, tc.err) {
			t.Errorf("#%d expected %v; got %v", i, tc.err, err)
		}
	}
	if _, err := UnmarshalParams([]byte("Hello")); err == nil {
		t.Error("unmarshal text want error")
	}
}

func TestLoadSaveParams(t *testing.T) {
	file := filepath.Join(t.TempDir(), "params.json")
	p := Params{Angle: 90, CX: .25, CY: .25, CW: .75, CH: -.75, Aspect: -1}
	if err := SaveParams(file, p); err != nil {
		t.Fatal(err)
	}
	got, err := LoadParams(file)
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("expected %+v; got %+v", p, got)
	}

	if _, err := LoadParams(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist; got %v", err)
	}
	if err := os.WriteFile(file, []byte(`{"version":9}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadParams(file); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion; got %v", err)
	}
}
