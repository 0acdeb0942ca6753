/*Package frame describes the pixel buffers that flow between ISP stages.

A Frame holds one Pair of buffers per numeric representation and color
domain in use.  A stage reads Pair.In, writes Pair.Out, and on success calls
Swap so the next stage sees the fresh data as its input.  Nothing is copied;
the two slices simply exchange roles.

Frames are allocated once by the driver (New) and are never resized by a
stage.
*/
package frame

import "fmt"

// DataType is the numeric representation of a sample
type DataType int

const (
	// Uint8 is an 8-bit unsigned sample, used for the planar YUV domain
	Uint8 DataType = iota
	// Uint16 is a 16-bit unsigned sample, used for companded raw data
	Uint16
	// Int32 is a 32-bit signed sample, used for linear raw and BGR data
	Int32
)

func (d DataType) String() string {
	switch d {
	case Uint8:
		return "u8"
	case Uint16:
		return "u16"
	case Int32:
		return "s32"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Domain is the color domain of a buffer
type Domain int

const (
	// RAW is the single-channel CFA mosaic straight off the sensor
	RAW Domain = iota
	// BGR is three interleaved channels per pixel, blue first
	BGR
	// YUV is planar luma with two chroma planes
	YUV
)

func (d Domain) String() string {
	switch d {
	case RAW:
		return "raw"
	case BGR:
		return "bgr"
	case YUV:
		return "yuv"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// Port is the (representation, domain) pair a stage consumes or produces
type Port struct {
	Type   DataType `json:"type"`
	Domain Domain   `json:"domain"`
}

func (p Port) String() string {
	return p.Domain.String() + "/" + p.Type.String()
}

// Sample is the set of element types a Pair may hold
type Sample interface {
	uint8 | uint16 | int32
}

// Pair is a double buffer.  In is read by a stage, Out is written.
// len(In) == len(Out) always holds.
type Pair[T Sample] struct {
	In  []T
	Out []T
}

// NewPair allocates both halves of a pair with n elements each
func NewPair[T Sample](n int) Pair[T] {
	return Pair[T]{In: make([]T, n), Out: make([]T, n)}
}

// Swap exchanges the roles of In and Out.  It is the commit point of a stage.
func (p *Pair[T]) Swap() {
	p.In, p.Out = p.Out, p.In
}

// Seed copies In into Out so that pixels a stage does not write hold
// valid data after the next Swap
func (p *Pair[T]) Seed() {
	copy(p.Out, p.In)
}

// Planes is a planar luma/chroma image, each plane W*H samples
type Planes struct {
	Y []uint8
	U []uint8
	V []uint8
}

// YUVPair is the double buffer for the planar YUV domain.  Planes swap
// independently since stages such as sharpen only touch luma.
type YUVPair struct {
	In  Planes
	Out Planes
}

// SwapY exchanges the luma planes
func (p *YUVPair) SwapY() {
	p.In.Y, p.Out.Y = p.Out.Y, p.In.Y
}

// SwapUV exchanges both chroma planes
func (p *YUVPair) SwapUV() {
	p.In.U, p.Out.U = p.Out.U, p.In.U
	p.In.V, p.Out.V = p.Out.V, p.In.V
}

// Info holds the geometry and mosaic layout of a frame
type Info struct {
	// Width is the width in pixels
	Width int `json:"width"`

	// Height is the height in pixels
	Height int `json:"height"`

	// CFA is the 2x2 color filter arrangement of the raw mosaic
	CFA CFA `json:"cfa"`
}

// Frame is a rectangular image with paired input/output storage per
// representation.  The pipeline driver owns it; stages only borrow it
// for the duration of a call.
type Frame struct {
	Info Info

	// RawU16 is companded sensor data, one sample per pixel
	RawU16 Pair[uint16]

	// RawS32 is linear sensor data, one sample per pixel
	RawS32 Pair[int32]

	// BGRS32 is three interleaved channels per pixel, B, G, R order
	BGRS32 Pair[int32]

	// YUVU8 is planar 8-bit luma and chroma
	YUVU8 YUVPair
}

// New allocates a frame with every buffer pair sized for width x height
func New(width, height int, cfa CFA) *Frame {
	n := width * height
	return &Frame{
		Info:   Info{Width: width, Height: height, CFA: cfa},
		RawU16: NewPair[uint16](n),
		RawS32: NewPair[int32](n),
		BGRS32: NewPair[int32](3 * n),
		YUVU8: YUVPair{
			In:  Planes{Y: make([]uint8, n), U: make([]uint8, n), V: make([]uint8, n)},
			Out: Planes{Y: make([]uint8, n), U: make([]uint8, n), V: make([]uint8, n)},
		},
	}
}

// Pixels returns width*height
func (f *Frame) Pixels() int {
	return f.Info.Width * f.Info.Height
}

// Index returns the row-major index of pixel (x, y)
func (f *Frame) Index(x, y int) int {
	return y*f.Info.Width + x
}
