package isp

import (
	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/util"
)

// dpcBorder is the width of the ring of pixels dpc leaves alone
const dpcBorder = 2

// Dpc detects and replaces isolated defective pixels in linear raw data.
// It reads RawS32.In, writes RawS32.Out and swaps RawS32.
//
// Neighbors are taken two pixels away in each direction so they share the
// center pixel's CFA color:
//
//	p1 .  p2 .  p3
//	.  .  .  .  .
//	p4 .  p0 .  p5
//	.  .  .  .  .
//	p6 .  p7 .  p8
//
// A pixel is defective only if it differs from all eight by more than the
// threshold.  The two-pixel border is never written by the correction pass,
// so Run first seeds Out from In; after the swap the border is the
// unmodified input.
type Dpc struct{}

// Name returns "dpc"
func (Dpc) Name() string { return "dpc" }

// In is linear raw
func (Dpc) In() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.RAW} }

// Out is linear raw
func (Dpc) Out() frame.Port { return frame.Port{Type: frame.Int32, Domain: frame.RAW} }

// correct returns the replacement for p0 given its eight neighbors.
// p0 comes back unchanged when any neighbor is within thres of it.
func correct(p0, p1, p2, p3, p4, p5, p6, p7, p8, thres int32, mode params.DpcMode) int32 {
	for _, n := range [8]int32{p1, p2, p3, p4, p5, p6, p7, p8} {
		if util.Abs(n-p0) <= thres {
			return p0
		}
	}
	if mode == params.Mean {
		return (p2 + p4 + p5 + p7) >> 2
	}

	// second derivative along each direction; the flattest one wins,
	// ties resolved vertical, horizontal, diagonal left, diagonal right
	dv := util.Abs(2*p0 - p2 - p7)
	dh := util.Abs(2*p0 - p4 - p5)
	ddl := util.Abs(2*p0 - p1 - p8)
	ddr := util.Abs(2*p0 - p3 - p6)
	flat := util.Min(util.Min(dv, dh), util.Min(ddl, ddr))
	switch flat {
	case dv:
		return (p2 + p7 + 1) >> 1
	case dh:
		return (p4 + p5 + 1) >> 1
	case ddl:
		return (p1 + p8 + 1) >> 1
	default:
		return (p3 + p6 + 1) >> 1
	}
}

// Run implements Stage
func (Dpc) Run(f *frame.Frame, p *params.Prms) error {
	if err := checkArgs(f, p); err != nil {
		return err
	}
	w, h := f.Info.Width, f.Info.Height
	in := f.RawS32.In
	out := f.RawS32.Out
	thres := p.Dpc.Thres
	mode := p.Dpc.Mode

	// the correction pass below overwrites every interior pixel
	f.RawS32.Seed()

	for y := dpcBorder; y < h-dpcBorder; y++ {
		up := (y - 2) * w
		mid := y * w
		down := (y + 2) * w
		for x := dpcBorder; x < w-dpcBorder; x++ {
			out[mid+x] = correct(
				in[mid+x],
				in[up+x-2], in[up+x], in[up+x+2],
				in[mid+x-2], in[mid+x+2],
				in[down+x-2], in[down+x], in[down+x+2],
				thres, mode)
		}
	}

	f.RawS32.Swap()
	return nil
}
