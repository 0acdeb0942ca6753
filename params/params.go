/*Package params holds the read-only configuration bundle handed to every ISP stage.

A Prms value is built once when the pipeline is configured (Default, Load,
or LoadYaml) and is never mutated while frames are processed.  Replacing
the parameters means building a new bundle.
*/
package params

import (
	"fmt"
	"strings"
)

// Info holds values shared by the clamp-sensitive stages
type Info struct {
	// MaxVal is the clamp ceiling for linear raw data
	MaxVal int32 `yaml:"max_val" json:"max_val"`

	// CFA is the name of the sensor's color filter arrangement, e.g. "RGGB"
	CFA string `yaml:"cfa" json:"cfa"`
}

// DePwl is a piecewise-linear decompanding curve.
// XCood must be strictly ascending and hold at least two points.
// Slope[i] is the slope of the segment ending at XCood[i]; Slope[0] is unused.
type DePwl struct {
	XCood []int32   `yaml:"x_cood" json:"x_cood"`
	YCood []int32   `yaml:"y_cood" json:"y_cood"`
	Slope []float64 `yaml:"slope,omitempty" json:"slope,omitempty"`
}

// Nums is the number of breakpoints
func (d DePwl) Nums() int {
	return len(d.XCood)
}

// ComputeSlopes fills Slope from the coordinates
func (d *DePwl) ComputeSlopes() {
	n := len(d.XCood)
	if len(d.YCood) < n {
		n = len(d.YCood)
	}
	d.Slope = make([]float64, n)
	for i := 1; i < n; i++ {
		dx := d.XCood[i] - d.XCood[i-1]
		if dx == 0 {
			continue
		}
		d.Slope[i] = float64(d.YCood[i]-d.YCood[i-1]) / float64(dx)
	}
}

// DpcMode selects how a defective pixel is replaced
type DpcMode int

const (
	// Mean replaces with the average of the four cardinal neighbors
	Mean DpcMode = iota
	// Gradient replaces with the average of the pair along the flattest direction
	Gradient
)

func (m DpcMode) String() string {
	switch m {
	case Mean:
		return "mean"
	case Gradient:
		return "gradient"
	default:
		return fmt.Sprintf("DpcMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler
func (m DpcMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *DpcMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "mean", "0":
		*m = Mean
	case "gradient", "grad", "1":
		*m = Gradient
	default:
		return fmt.Errorf("unknown dpc mode %q", b)
	}
	return nil
}

// Dpc configures defective pixel correction
type Dpc struct {
	// Thres is the absolute difference a pixel must exceed against all
	// eight same-color neighbors to be considered defective
	Thres int32 `yaml:"thres" json:"thres"`

	Mode DpcMode `yaml:"mode" json:"mode"`
}

// Gamma is a sampled tone curve.  Curve values are normalized, 0..1 nominal.
type Gamma struct {
	Curve   []float64 `yaml:"curve" json:"curve"`
	InBits  int       `yaml:"in_bits" json:"in_bits"`
	OutBits int       `yaml:"out_bits" json:"out_bits"`
}

// Sharpen configures unsharp masking.  Ratio must lie in [0, 1); zero
// leaves the image as is.
type Sharpen struct {
	Ratio float64 `yaml:"ratio" json:"ratio"`
}

// WbGain holds white balance gains in R, Gr, Gb, B order
type WbGain struct {
	D65Gain [4]float64 `yaml:"d65_gain" json:"d65_gain"`
}

// Prms is the full parameter bundle, one sub-configuration per stage
type Prms struct {
	Info    Info    `yaml:"info" json:"info"`
	DePwl   DePwl   `yaml:"depwl" json:"depwl"`
	Dpc     Dpc     `yaml:"dpc" json:"dpc"`
	Gamma   Gamma   `yaml:"rgb_gamma" json:"rgb_gamma"`
	Sharpen Sharpen `yaml:"sharpen" json:"sharpen"`
	WbGain  WbGain  `yaml:"wb_gains" json:"wb_gains"`
}

// Clone returns a deep copy, so a caller can derive a new bundle
// without touching one that may be in use
func (p Prms) Clone() Prms {
	out := p
	out.DePwl.XCood = append([]int32(nil), p.DePwl.XCood...)
	out.DePwl.YCood = append([]int32(nil), p.DePwl.YCood...)
	out.DePwl.Slope = append([]float64(nil), p.DePwl.Slope...)
	out.Gamma.Curve = append([]float64(nil), p.Gamma.Curve...)
	return out
}
