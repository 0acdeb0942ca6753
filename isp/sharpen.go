package isp

import (
	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/util"
)

// gaussKernel is a 5x5 Gaussian, sigma ~1, whose weights sum to kernelSum
var gaussKernel = [5][5]int{
	{1, 4, 7, 4, 1},
	{4, 16, 26, 16, 4},
	{7, 26, 41, 26, 7},
	{4, 16, 26, 16, 4},
	{1, 4, 7, 4, 1},
}

const kernelSum = 273

// Sharpen applies an unsharp mask to the luma plane,
//
//	out = (y - w*blur(y)) / (1 - w)
//
// with w = params.Sharpen.Ratio.  It reads YUVU8.In.Y, writes YUVU8.Out.Y
// and swaps the luma planes; chroma is untouched.  Pixels within two of an
// edge are copied through.
type Sharpen struct{}

// Name returns "sharpen"
func (Sharpen) Name() string { return "sharpen" }

// In is the 8-bit luma plane
func (Sharpen) In() frame.Port { return frame.Port{Type: frame.Uint8, Domain: frame.YUV} }

// Out is the 8-bit luma plane
func (Sharpen) Out() frame.Port { return frame.Port{Type: frame.Uint8, Domain: frame.YUV} }

// blur5 returns the kernel-weighted mean of the 5x5 window centered on
// (x, y), truncated to an integer
func blur5(in []uint8, w, x, y int) int {
	acc := 0
	for ky := 0; ky < 5; ky++ {
		row := (y + ky - 2) * w
		for kx := 0; kx < 5; kx++ {
			acc += int(in[row+x+kx-2]) * gaussKernel[ky][kx]
		}
	}
	return acc / kernelSum
}

// Run implements Stage
func (Sharpen) Run(f *frame.Frame, p *params.Prms) error {
	if err := checkArgs(f, p); err != nil {
		return err
	}
	w, h := f.Info.Width, f.Info.Height
	in := f.YUVU8.In.Y
	out := f.YUVU8.Out.Y
	ratio := p.Sharpen.Ratio
	// evaluated as y + w*(y - b)/(1 - w), not the literal (y - w*b)/(1 - w).
	// The two agree algebraically but the truncated result differs by one
	// for some (y, b); this form keeps a pixel with no detail exact.
	gain := ratio / (1 - ratio)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if x < 2 || y < 2 || x > w-3 || y > h-3 {
				out[idx] = in[idx]
				continue
			}
			orig := int(in[idx])
			detail := orig - blur5(in, w, x, y)
			v := int(float64(orig) + gain*float64(detail))
			out[idx] = uint8(util.Clamp(v, 0, 255))
		}
	}

	f.YUVU8.SwapY()
	return nil
}
