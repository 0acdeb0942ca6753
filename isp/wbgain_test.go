package isp

import (
	"testing"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/params"
	"github.com/google/go-cmp/cmp"
)

func wbPrms(gains [4]float64, maxVal int32) *params.Prms {
	p := params.Default()
	p.Info.MaxVal = maxVal
	p.WbGain.D65Gain = gains
	return &p
}

func TestWbGainCheckerboard(t *testing.T) {
	gains := [4]float64{2, 1.5, 0.75, 0.5}
	tests := []struct {
		cfa frame.CFA
		exp []int32
	}{
		{frame.RGGB, []int32{
			200, 150, 200, 150,
			75, 50, 75, 50,
			200, 150, 200, 150,
		}},
		{frame.GRBG, []int32{
			150, 200, 150, 200,
			50, 75, 50, 75,
			150, 200, 150, 200,
		}},
		{frame.GBRG, []int32{
			75, 50, 75, 50,
			200, 150, 200, 150,
			75, 50, 75, 50,
		}},
		{frame.BGGR, []int32{
			50, 75, 50, 75,
			150, 200, 150, 200,
			50, 75, 50, 75,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.cfa.String(), func(t *testing.T) {
			f := frame.New(4, 3, tt.cfa)
			for i := range f.RawS32.In {
				f.RawS32.In[i] = 100
			}
			if err := (WbGain{}).Run(f, wbPrms(gains, 1000)); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.exp, f.RawS32.In); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestWbGainUnity(t *testing.T) {
	f := frame.New(3, 3, frame.BGGR)
	for i := range f.RawS32.In {
		f.RawS32.In[i] = int32(i * 111)
	}
	exp := append([]int32(nil), f.RawS32.In...)
	if err := (WbGain{}).Run(f, wbPrms([4]float64{1, 1, 1, 1}, 1<<20-1)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(exp, f.RawS32.In); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestWbGainClamps(t *testing.T) {
	f := frame.New(2, 1, frame.RGGB)
	f.RawS32.In[0] = 800 // R, gain 2
	f.RawS32.In[1] = -40 // Gb, gain 1
	if err := (WbGain{}).Run(f, wbPrms([4]float64{2, 1, 1, 1}, 1000)); err != nil {
		t.Fatal(err)
	}
	exp := []int32{1000, 0}
	if diff := cmp.Diff(exp, f.RawS32.In); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestWbGainHugeGain(t *testing.T) {
	f := frame.New(1, 1, frame.RGGB)
	f.RawS32.In[0] = 1 << 30
	if err := (WbGain{}).Run(f, wbPrms([4]float64{1e6, 1, 1, 1}, 1<<20-1)); err != nil {
		t.Fatal(err)
	}
	if got := f.RawS32.In[0]; got != 1<<20-1 {
		t.Errorf("expected %d, got %d", 1<<20-1, got)
	}
}
