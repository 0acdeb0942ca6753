package isp

import (
	"fmt"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/util"
)

// DePwl expands companded sensor data through a piecewise-linear curve.
// It reads RawU16.In, writes RawS32.Out and swaps RawS32.
type DePwl struct{}

// Name returns "depwl"
func (DePwl) Name() string { return "depwl" }

// In is companded raw
func (DePwl) In() frame.Port { return frame.Port{Type: frame.Uint16, Domain: frame.RAW} }

// Out is linear raw
func (DePwl) Out() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.RAW} }

// segment returns the index of the first breakpoint at or above v, or the
// last breakpoint when v lies beyond the curve.  It returns 0 only when
// the curve has fewer than two points.
func segment(x []int32, v int32) int {
	idx := 0
	for i := 1; i < len(x); i++ {
		idx = i
		if v <= x[i] {
			break
		}
	}
	return idx
}

// Run implements Stage
func (DePwl) Run(f *frame.Frame, p *params.Prms) error {
	if err := checkArgs(f, p); err != nil {
		return err
	}
	pwl := &p.DePwl
	// a curve that cannot resolve a segment would fail on the first pixel;
	// catch it before anything is written
	if segment(pwl.XCood, 0) == 0 {
		return fmt.Errorf("%w: decompanding curve has %d breakpoints, need at least 2", ErrConfig, pwl.Nums())
	}
	if len(pwl.YCood) < pwl.Nums() || len(pwl.Slope) < pwl.Nums() {
		return fmt.Errorf("%w: decompanding curve has %d x, %d y and %d slopes", ErrConfig, pwl.Nums(), len(pwl.YCood), len(pwl.Slope))
	}

	in := f.RawU16.In
	out := f.RawS32.Out
	ceil := p.Info.MaxVal
	for i, raw := range in {
		v := int32(raw)
		idx := segment(pwl.XCood, v)
		// y = slope * (x - x[i-1]) + y[i-1]
		y := int32(pwl.Slope[idx]*float64(v-pwl.XCood[idx-1]) + float64(pwl.YCood[idx-1]))
		out[i] = util.Clamp(y, 0, ceil)
	}

	f.RawS32.Swap()
	return nil
}
