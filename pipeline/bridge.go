package pipeline

import (
	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/isp"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/util"
)

// Bridges carry data across a domain hop the stage set does not cover.
// They move samples, they do not convert color: a real pipeline puts a
// demosaic and a color space conversion here.

// RawToBGR copies each linear raw sample into all three BGR channels.
type RawToBGR struct{}

// Name returns "raw2bgr"
func (RawToBGR) Name() string { return "raw2bgr" }

// In is linear raw
func (RawToBGR) In() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.RAW} }

// Out is three channel BGR
func (RawToBGR) Out() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.BGR} }

// Run implements isp.Stage
func (RawToBGR) Run(f *frame.Frame, p *params.Prms) error {
	if f == nil || p == nil {
		return isp.ErrNilArg
	}
	out := f.BGRS32.Out
	for i, v := range f.RawS32.In {
		out[3*i], out[3*i+1], out[3*i+2] = v, v, v
	}
	f.BGRS32.Swap()
	return nil
}

// BGRToLuma takes the green channel, clamped to 8 bits, as luma and
// fills both chroma planes with the neutral value 128.
type BGRToLuma struct{}

// Name returns "bgr2y"
func (BGRToLuma) Name() string { return "bgr2y" }

// In is three channel BGR
func (BGRToLuma) In() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.BGR} }

// Out is planar 8-bit YUV
func (BGRToLuma) Out() frame.Port { return frame.Port{Type: frame.Uint8, Domain: frame.YUV} }

// Run implements isp.Stage
func (BGRToLuma) Run(f *frame.Frame, p *params.Prms) error {
	if f == nil || p == nil {
		return isp.ErrNilArg
	}
	in := f.BGRS32.In
	out := f.YUVU8.Out
	for i := range out.Y {
		out.Y[i] = uint8(util.Clamp(in[3*i+1], 0, 255))
		out.U[i] = 128
		out.V[i] = 128
	}
	f.YUVU8.SwapY()
	f.YUVU8.SwapUV()
	return nil
}

var bridges = map[string]isp.Stage{
	RawToBGR{}.Name():  RawToBGR{},
	BGRToLuma{}.Name(): BGRToLuma{},
}

// Lookup finds a stage or bridge by name
func Lookup(name string) (isp.Stage, bool) {
	if s, ok := isp.Lookup(name); ok {
		return s, true
	}
	s, ok := bridges[name]
	return s, ok
}

// Available returns every name New accepts, stages first
func Available() []string {
	return append(isp.Names(), RawToBGR{}.Name(), BGRToLuma{}.Name())
}
