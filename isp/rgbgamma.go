package isp

import (
	"fmt"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/params"
)

// RgbGamma maps each of the three BGR channels through a sampled tone
// curve with linear interpolation.  It reads BGRS32.In, writes BGRS32.Out
// and swaps BGRS32.
//
// The result is scaled to 2^OutBits - 1 and is not clamped afterwards;
// a curve whose samples leave [0, 1] produces values outside the output
// range and downstream stages see them as is.
type RgbGamma struct{}

// Name returns "rgbgamma"
func (RgbGamma) Name() string { return "rgbgamma" }

// In is three channel BGR
func (RgbGamma) In() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.BGR} }

// Out is three channel BGR
func (RgbGamma) Out() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.BGR} }

// Run implements Stage
func (RgbGamma) Run(f *frame.Frame, p *params.Prms) error {
	if err := checkArgs(f, p); err != nil {
		return err
	}
	curve := p.Gamma.Curve
	n := len(curve)
	if n < 2 {
		return fmt.Errorf("%w: tone curve has %d samples, need at least 2", ErrConfig, n)
	}
	step := float64(n-1) / float64(uint64(1)<<uint(p.Gamma.InBits))
	outMax := float64(uint64(1)<<uint(p.Gamma.OutBits) - 1)
	last := n - 2

	in := f.BGRS32.In
	out := f.BGRS32.Out
	for i, c := range in {
		pos := float64(c) * step
		idx := int(pos)
		// samples at or past 2^InBits (or negative) would index outside
		// the table; they extrapolate along the end segment instead
		if idx > last {
			idx = last
		} else if idx < 0 {
			idx = 0
		}
		scale := (pos-float64(idx))*(curve[idx+1]-curve[idx]) + curve[idx]
		out[i] = int32(outMax * scale)
	}

	f.BGRS32.Swap()
	return nil
}
