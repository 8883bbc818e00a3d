package croprotate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ParamsVersion is the version written by MarshalParams.
const ParamsVersion = 2

var (
	// ErrInvalidParams is returned for parameters outside their documented domain.
	ErrInvalidParams = errors.New("invalid transform parameters")
	// ErrUnsupportedVersion is returned when persisted parameters carry an unknown version.
	ErrUnsupportedVersion = errors.New("unsupported parameters version")
)

// Params holds the user-facing transform parameters.
//
// CX, CY locate the top-left corner and CW, CH the bottom-right corner of the
// crop window, all normalized to [0,1]. A negative CW flips the image
// horizontally, a negative CH vertically. Aspect is the forced width/height
// ratio of the crop; values <= 0 leave it unconstrained.
type Params struct {
	Angle  float64 `json:"angle"`
	CX     float64 `json:"cx"`
	CY     float64 `json:"cy"`
	CW     float64 `json:"cw"`
	CH     float64 `json:"ch"`
	Aspect float64 `json:"aspect"`
}

// DefaultParams returns parameters that leave an image of the given size
// untouched. The image ratio is remembered as a negative, unenforced aspect.
func DefaultParams(width, height int) Params {
	p := Params{CW: 1, CH: 1, Aspect: -1}
	if width > 0 && height > 0 {
		p.Aspect = -float64(width) / float64(height)
	}
	return p
}

// SetFlip sets the flip state without touching the crop window.
func (p *Params) SetFlip(horizontal, vertical bool) *Params {
	p.CW = math.Copysign(p.CW, sign(horizontal))
	p.CH = math.Copysign(p.CH, sign(vertical))
	return p
}

// Flip reports the flip state encoded in the crop signs.
func (p Params) Flip() (horizontal, vertical bool) {
	return math.Signbit(p.CW), math.Signbit(p.CH)
}

func sign(negative bool) float64 {
	if negative {
		return -1
	}
	return 1
}

// Validate checks p against the documented domain: finite values, a crop
// window inside [0,1] and CX < |CW|, CY < |CH|.
func (p Params) Validate() error {
	for _, v := range []float64{p.Angle, p.CX, p.CY, p.CW, p.CH, p.Aspect} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidParams, p)
		}
	}
	cw, ch := math.Abs(p.CW), math.Abs(p.CH)
	if p.CX < 0 || p.CY < 0 || cw > 1 || ch > 1 || p.CX >= cw || p.CY >= ch {
		return fmt.Errorf("%w: crop window (%g,%g)-(%g,%g)", ErrInvalidParams, p.CX, p.CY, cw, ch)
	}
	return nil
}

type paramsV1 struct {
	Angle float64 `json:"angle"`
	CX    float64 `json:"cx"`
	CY    float64 `json:"cy"`
	CW    float64 `json:"cw"`
	CH    float64 `json:"ch"`
}

type paramsEnvelope struct {
	Version int             `json:"version"`
	Params  json.RawMessage `json:"params"`
}

// MarshalParams encodes p together with ParamsVersion.
func MarshalParams(p Params) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(paramsEnvelope{Version: ParamsVersion, Params: b}, "", "  ")
}

// UnmarshalParams decodes parameters written by any known version and
// migrates them to the current shape.
func UnmarshalParams(data []byte) (p Params, err error) {
	var env paramsEnvelope
	if err = json.Unmarshal(data, &env); err != nil {
		return
	}
	switch env.Version {
	case 1:
		// version 1 had no aspect field
		var v1 paramsV1
		if err = json.Unmarshal(env.Params, &v1); err != nil {
			return
		}
		p = Params{Angle: v1.Angle, CX: v1.CX, CY: v1.CY, CW: v1.CW, CH: v1.CH, Aspect: -1}
		logger().Debug("migrated transform parameters", "from", 1, "to", ParamsVersion)
	case ParamsVersion:
		if err = json.Unmarshal(env.Params, &p); err != nil {
			return
		}
	default:
		return Params{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	err = p.Validate()
	return
}

// LoadParams reads parameters from a JSON file.
func LoadParams(file string) (Params, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return Params{}, err
	}
	p, err := UnmarshalParams(b)
	if err != nil {
		return Params{}, fmt.Errorf("params: parse %s: %w", file, err)
	}
	return p, nil
}

// SaveParams writes parameters to a JSON file.
func SaveParams(file string, p Params) error {
	b, err := MarshalParams(p)
	if err != nil {
		return err
	}
	return os.WriteFile(file, b, 0644)
}
