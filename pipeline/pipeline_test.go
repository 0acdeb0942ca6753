package pipeline

import (
	"errors"
	"sync"
	"testing"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/isp"
	"github.com/adas-eyes/ispcore/params"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func flatCompanded(w, h int, v uint16) *frame.Frame {
	f := frame.New(w, h, frame.RGGB)
	for i := range f.RawU16.In {
		f.RawU16.In[i] = v
	}
	return f
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		err   error
	}{
		{"empty", nil, ErrEmpty},
		{"unknown", []string{"depwl", "demosaic"}, ErrUnknownStage},
		{"raw into bgr", []string{"depwl", "rgbgamma"}, ErrIncompatible},
		{"companded into dpc", []string{"dpc", "depwl"}, ErrIncompatible},
		{"bgr into sharpen", []string{"raw2bgr", "sharpen"}, ErrIncompatible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.names...)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestNewFull(t *testing.T) {
	p, err := New(Full...)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Full, p.Names()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if p.In() != (frame.Port{Type: frame.Uint16, Domain: frame.RAW}) {
		t.Errorf("unexpected input port %s", p.In())
	}
	if p.Out() != (frame.Port{Type: frame.Uint8, Domain: frame.YUV}) {
		t.Errorf("unexpected output port %s", p.Out())
	}
}

func TestNewTrimsNames(t *testing.T) {
	p, err := New(" depwl", "dpc ")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"depwl", "dpc"}, p.Names()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestAvailable(t *testing.T) {
	exp := []string{"depwl", "dpc", "rgbgamma", "sharpen", "wbgain", "raw2bgr", "bgr2y"}
	if diff := cmp.Diff(exp, Available()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRunRaw(t *testing.T) {
	p, err := New(Raw...)
	if err != nil {
		t.Fatal(err)
	}
	prm := params.Default()
	prm.WbGain.D65Gain = [4]float64{2, 1, 1, 0.5}
	f := flatCompanded(6, 5, 3072)
	f.RawU16.In[f.Index(2, 2)] = 4000
	if err := p.Run(f, &prm); err != nil {
		t.Fatal(err)
	}
	// 3072 decompands to 10240; the hot pixel is corrected back to it
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			exp := int32(10240)
			switch f.Info.CFA.Role(x, y) {
			case frame.R:
				exp = 20480
			case frame.B:
				exp = 5120
			}
			if got := f.RawS32.In[f.Index(x, y)]; got != exp {
				t.Errorf("(%d,%d) expected %d, got %d", x, y, exp, got)
			}
		}
	}
}

func TestRunFull(t *testing.T) {
	p, err := New(Full...)
	if err != nil {
		t.Fatal(err)
	}
	prm := params.Default()
	f := flatCompanded(8, 8, 3584)
	if err := p.Run(f, &prm); err != nil {
		t.Fatal(err)
	}
	// Gr at (1,0): 43008 linear, gain 1, then 255 * 0.41015625 * 0.35049...
	if got := f.YUVU8.In.Y[f.Index(1, 0)]; got != 36 {
		t.Errorf("expected luma 36, got %d", got)
	}
	for i := range f.YUVU8.In.U {
		if f.YUVU8.In.U[i] != 128 || f.YUVU8.In.V[i] != 128 {
			t.Fatalf("chroma at %d not neutral", i)
		}
	}
}

func TestRunHalts(t *testing.T) {
	p, err := New(Raw...)
	if err != nil {
		t.Fatal(err)
	}
	prm := params.Default()
	prm.DePwl.XCood = prm.DePwl.XCood[:1]
	f := flatCompanded(5, 5, 100)
	in := f.RawS32.In
	before := testutil.ToFloat64(stageFailures.WithLabelValues("depwl"))

	err = p.Run(f, &prm)
	var se *isp.StageError
	if !errors.As(err, &se) || se.Stage != "depwl" {
		t.Fatalf("expected a depwl StageError, got %v", err)
	}
	if !errors.Is(err, isp.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
	if &f.RawS32.In[0] != &in[0] {
		t.Error("a later stage ran after the failure")
	}
	after := testutil.ToFloat64(stageFailures.WithLabelValues("depwl"))
	if after != before+1 {
		t.Errorf("expected failure count %v, got %v", before+1, after)
	}
}

func TestRunConcurrent(t *testing.T) {
	p, err := New(Raw...)
	if err != nil {
		t.Fatal(err)
	}
	prm := params.Default()
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Run(flatCompanded(16, 16, uint16(i)), &prm)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("run %d: %v", i, err)
		}
	}
}

func TestBridges(t *testing.T) {
	f := frame.New(2, 1, frame.RGGB)
	f.RawS32.In[0], f.RawS32.In[1] = 300, -5
	prm := params.Default()
	if err := (RawToBGR{}).Run(f, &prm); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{300, 300, 300, -5, -5, -5}, f.BGRS32.In); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	f.BGRS32.In[1] = 77
	if err := (BGRToLuma{}).Run(f, &prm); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint8{77, 0}, f.YUVU8.In.Y); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if err := (RawToBGR{}).Run(nil, &prm); !errors.Is(err, isp.ErrNilArg) {
		t.Errorf("expected ErrNilArg, got %v", err)
	}
}
