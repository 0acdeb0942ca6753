package isp

import (
	"errors"
	"testing"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/params"
	"github.com/google/go-cmp/cmp"
)

func gammaFrame(bgr ...int32) *frame.Frame {
	f := frame.New(len(bgr)/3, 1, frame.RGGB)
	copy(f.BGRS32.In, bgr)
	return f
}

func TestRgbGammaIdentity(t *testing.T) {
	const bits = 4
	maxv := 1<<bits - 1
	curve := make([]float64, 1<<bits+1)
	for k := range curve {
		curve[k] = float64(k) / float64(maxv)
	}
	p := params.Default()
	p.Gamma = params.Gamma{Curve: curve, InBits: bits, OutBits: bits}

	in := make([]int32, 3*(maxv+1))
	for i := range in {
		in[i] = int32(i / 3)
	}
	f := gammaFrame(in...)
	if err := (RgbGamma{}).Run(f, &p); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, f.BGRS32.In); diff != "" {
		t.Errorf("identity curve changed samples (-want +got):\n%s", diff)
	}
}

func TestRgbGammaMidpoint(t *testing.T) {
	p := params.Default()
	p.Gamma = params.Gamma{Curve: []float64{0, 0.5, 1}, InBits: 2, OutBits: 8}
	outMax := 255.
	f := gammaFrame(1, 3, 2)
	if err := (RgbGamma{}).Run(f, &p); err != nil {
		t.Fatal(err)
	}
	exp := []int32{
		int32((outMax*0 + outMax*0.5) / 2),
		int32((outMax*0.5 + outMax*1) / 2),
		int32(outMax * 0.5),
	}
	if diff := cmp.Diff(exp, f.BGRS32.In); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRgbGammaNotClamped(t *testing.T) {
	p := params.Default()
	p.Gamma = params.Gamma{Curve: []float64{0, 2}, InBits: 1, OutBits: 4}
	// 2 == 1<<InBits runs off the table and extrapolates
	f := gammaFrame(0, 1, 2)
	if err := (RgbGamma{}).Run(f, &p); err != nil {
		t.Fatal(err)
	}
	exp := []int32{0, 15, 30}
	if diff := cmp.Diff(exp, f.BGRS32.In); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRgbGammaDefaultCurve(t *testing.T) {
	p := params.Default()
	f := gammaFrame(0, 1<<20-1, 1<<19)
	if err := (RgbGamma{}).Run(f, &p); err != nil {
		t.Fatal(err)
	}
	got := f.BGRS32.In
	if got[0] != 0 {
		t.Errorf("expected 0 for black, got %d", got[0])
	}
	if got[1] < 250 || got[1] > 255 {
		t.Errorf("expected near 255 for white, got %d", got[1])
	}
	if got[2] <= 128 {
		t.Errorf("expected mid grey to be lifted above 128, got %d", got[2])
	}
}

func TestRgbGammaShortCurve(t *testing.T) {
	p := params.Default()
	p.Gamma.Curve = []float64{1}
	f := gammaFrame(1, 2, 3)
	in := f.BGRS32.In
	if err := (RgbGamma{}).Run(f, &p); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
	if &f.BGRS32.In[0] != &in[0] {
		t.Error("buffers were swapped on failure")
	}
}
