package frame

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewSizesEveryPair(t *testing.T) {
	f := New(6, 4, GRBG)
	n := 24
	if f.Pixels() != n {
		t.Fatalf("expected %d pixels, got %d", n, f.Pixels())
	}
	sizes := map[string][2]int{
		"RawU16": {len(f.RawU16.In), len(f.RawU16.Out)},
		"RawS32": {len(f.RawS32.In), len(f.RawS32.Out)},
		"Y":      {len(f.YUVU8.In.Y), len(f.YUVU8.Out.Y)},
		"U":      {len(f.YUVU8.In.U), len(f.YUVU8.Out.U)},
	}
	for name, s := range sizes {
		if s[0] != n || s[1] != n {
			t.Errorf("%s: expected %d/%d, got %d/%d", name, n, n, s[0], s[1])
		}
	}
	if len(f.BGRS32.In) != 3*n || len(f.BGRS32.Out) != 3*n {
		t.Errorf("BGRS32 should hold three channels, got %d/%d", len(f.BGRS32.In), len(f.BGRS32.Out))
	}
}

func TestPairSwapExchangesWithoutCopy(t *testing.T) {
	p := NewPair[int32](3)
	p.In[0] = 7
	p.Out[0] = 9
	in, out := &p.In[0], &p.Out[0]
	p.Swap()
	if &p.In[0] != out || &p.Out[0] != in {
		t.Fatal("swap should exchange the backing arrays, not copy them")
	}
	if p.In[0] != 9 || p.Out[0] != 7 {
		t.Errorf("expected In=9 Out=7 after swap, got In=%d Out=%d", p.In[0], p.Out[0])
	}
}

func TestPairSeed(t *testing.T) {
	p := NewPair[uint16](4)
	copy(p.In, []uint16{1, 2, 3, 4})
	p.Seed()
	if diff := cmp.Diff(p.In, p.Out); diff != "" {
		t.Errorf("seed mismatch (-in +out):\n%s", diff)
	}
}

func TestYUVSwapYLeavesChroma(t *testing.T) {
	f := New(2, 2, RGGB)
	f.YUVU8.In.Y[0] = 1
	f.YUVU8.In.U[0] = 2
	f.YUVU8.SwapY()
	if f.YUVU8.Out.Y[0] != 1 {
		t.Error("luma should have moved to Out")
	}
	if f.YUVU8.In.U[0] != 2 {
		t.Error("chroma should not move on SwapY")
	}
}

type fakeSource struct {
	res [2]int
	buf []uint16
	err error
}

func (s fakeSource) GetRes() ([2]int, error)        { return s.res, nil }
func (s fakeSource) GetFrameU16() ([]uint16, error) { return s.buf, s.err }

func TestCapture(t *testing.T) {
	src := fakeSource{res: [2]int{2, 2}, buf: []uint16{10, 20, 30, 40}}
	f, err := Capture(src, BGGR)
	if err != nil {
		t.Fatal(err)
	}
	if f.Info.Width != 2 || f.Info.Height != 2 || f.Info.CFA != BGGR {
		t.Errorf("unexpected info %+v", f.Info)
	}
	if diff := cmp.Diff(src.buf, f.RawU16.In); diff != "" {
		t.Errorf("captured data mismatch (-want +got):\n%s", diff)
	}
}

func TestCaptureRejectsShortBuffer(t *testing.T) {
	src := fakeSource{res: [2]int{4, 4}, buf: make([]uint16, 3)}
	if _, err := Capture(src, RGGB); err == nil {
		t.Fatal("expected an error for a short buffer")
	}
	boom := errors.New("boom")
	src = fakeSource{res: [2]int{1, 1}, err: boom}
	if _, err := Capture(src, RGGB); !errors.Is(err, boom) {
		t.Fatalf("expected source error to propagate, got %v", err)
	}
}

func TestYUVPlanesAlongsideDomain(t *testing.T) {
	f := New(3, 2, RGGB)
	var p Planes = f.YUVU8.Out
	if len(p.Y) != 6 || len(p.U) != 6 || len(p.V) != 6 {
		t.Errorf("expected three 6 sample planes, got %d/%d/%d", len(p.Y), len(p.U), len(p.V))
	}
	if got := (Port{Type: Uint8, Domain: YUV}).String(); got != "yuv/uint8" {
		t.Errorf("expected yuv/uint8, got %s", got)
	}
}
