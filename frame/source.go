package frame

import "fmt"

// Source describes anything that can hand the driver a raw frame,
// for example a camera or a file on disk
type Source interface {
	// GetRes gets the (W, H) associated with the data returned by GetFrameU16
	GetRes() ([2]int, error)

	// GetFrameU16 gets a companded raw frame.  The data is a 1D slice which is
	// strided by the frame width.
	GetFrameU16() ([]uint16, error)
}

// Capture pulls one frame from src into a freshly allocated Frame's RawU16.In
func Capture(src Source, cfa CFA) (*Frame, error) {
	res, err := src.GetRes()
	if err != nil {
		return nil, err
	}
	buf, err := src.GetFrameU16()
	if err != nil {
		return nil, err
	}
	if len(buf) != res[0]*res[1] {
		return nil, fmt.Errorf("source returned %d samples for a %dx%d frame", len(buf), res[0], res[1])
	}
	f := New(res[0], res[1], cfa)
	copy(f.RawU16.In, buf)
	return f, nil
}
