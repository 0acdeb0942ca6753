package isp

import (
	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/util"
)

// WbGain multiplies each raw pixel by the gain of its CFA color role.
// It reads RawS32.In, writes RawS32.Out and swaps RawS32.
//
// The gains are a fixed calibration (D65 by default); estimating gains for
// the scene illuminant is not this stage's job.
type WbGain struct{}

// Name returns "wbgain"
func (WbGain) Name() string { return "wbgain" }

// In is linear raw
func (WbGain) In() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.RAW} }

// Out is linear raw
func (WbGain) Out() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.RAW} }

// Run implements Stage
func (WbGain) Run(f *frame.Frame, p *params.Prms) error {
	if err := checkArgs(f, p); err != nil {
		return err
	}
	w, h := f.Info.Width, f.Info.Height
	cfa := f.Info.CFA
	gains := p.WbGain.D65Gain
	ceil := float64(p.Info.MaxVal)
	in := f.RawS32.In
	out := f.RawS32.Out

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			g := gains[cfa.Role(x, y)]
			// clamped before the conversion so a large gain cannot overflow int32
			out[idx] = int32(util.Clamp(float64(in[idx])*g, 0, ceil))
		}
	}

	f.RawS32.Swap()
	return nil
}
