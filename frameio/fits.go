/*Package frameio moves frames between disk, the network and the pipeline.

Frames are stored as FITS.  Companded raw data uses the 16-bit convention
with BZERO = 32768, processed buffers are written as 32-bit integers or
8-bit planes.  Every file carries a DATACRC card so a reader can tell a
truncated or corrupted capture from a good one.
*/
package frameio

import (
	"errors"
	"fmt"
	"io"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/astrogo/fitsio"
)

const (
	// CRCCard holds the CRC-32 of the data unit as 8 hex digits
	CRCCard = "DATACRC"

	// CFACard holds the mosaic pattern of raw data, e.g. "RGGB"
	CFACard = "BAYERPAT"

	// PortCard holds the domain and representation the data was taken from
	PortCard = "ISPPORT"
)

var (
	// ErrNotImage is returned when the primary HDU is not a 2 or 3 axis image
	ErrNotImage = errors.New("primary HDU is not an image")

	// ErrBitpix is returned for a BITPIX other than 8, 16 or 32
	ErrBitpix = errors.New("unsupported BITPIX")

	// ErrPort is returned when a frame buffer has no FITS layout
	ErrPort = errors.New("no FITS layout for port")
)

// The ports WriteFrame and Preview know how to lay out
var (
	RawU16 = frame.Port{Type: frame.Uint16, Domain: frame.RAW}
	RawS32 = frame.Port{Type: frame.Int32, Domain: frame.RAW}
	BGRS32 = frame.Port{Type: frame.Int32, Domain: frame.BGR}
	YUVU8  = frame.Port{Type: frame.Uint8, Domain: frame.YUV}
)

// Image is a decoded FITS primary HDU.  Data holds physical values, BZERO
// already applied, plane after plane.
type Image struct {
	Width, Height, Planes int
	Bitpix                int
	Data                  []int32
	Cards                 []fitsio.Card

	// Checked is true when a DATACRC card was present and matched
	Checked bool
}

// Card returns the header card with the given name
func (im *Image) Card(name string) (fitsio.Card, bool) {
	for _, c := range im.Cards {
		if c.Name == name {
			return c, true
		}
	}
	return fitsio.Card{}, false
}

// CFA returns the BAYERPAT card parsed, or def if the card is absent
func (im *Image) CFA(def frame.CFA) (frame.CFA, error) {
	c, ok := im.Card(CFACard)
	if !ok {
		return def, nil
	}
	s, ok := c.Value.(string)
	if !ok {
		return def, fmt.Errorf("%s card is %T, not a string", CFACard, c.Value)
	}
	return frame.ParseCFA(s)
}

// U16 returns the first plane clamped to the uint16 range
func (im *Image) U16() []uint16 {
	n := im.Width * im.Height
	out := make([]uint16, n)
	for i, v := range im.Data[:n] {
		switch {
		case v < 0:
			out[i] = 0
		case v > 0xFFFF:
			out[i] = 0xFFFF
		default:
			out[i] = uint16(v)
		}
	}
	return out
}

// GetRes implements frame.Source
func (im *Image) GetRes() ([2]int, error) {
	return [2]int{im.Width, im.Height}, nil
}

// GetFrameU16 implements frame.Source
func (im *Image) GetFrameU16() ([]uint16, error) {
	return im.U16(), nil
}

func cardInt(c *fitsio.Card) int64 {
	if c == nil {
		return 0
	}
	switch v := c.Value.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

// Read decodes the primary HDU of a FITS stream.  If the header carries a
// DATACRC card the data must match it or ErrChecksum is returned.
func Read(r io.Reader) (*Image, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if len(f.HDUs()) == 0 {
		return nil, fmt.Errorf("%w: no HDU", ErrNotImage)
	}
	hdu, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, ErrNotImage
	}
	hdr := hdu.Header()
	axes := hdr.Axes()
	if len(axes) < 2 || len(axes) > 3 {
		return nil, fmt.Errorf("%w: %d axes", ErrNotImage, len(axes))
	}
	im := &Image{Width: axes[0], Height: axes[1], Planes: 1, Bitpix: hdr.Bitpix()}
	if len(axes) == 3 {
		im.Planes = axes[2]
	}
	bzero := int32(cardInt(hdr.Get("BZERO")))
	// hdu.Read sets the slice length, so it needs the capacity up front
	n := im.Width * im.Height * im.Planes

	var stored interface{}
	switch im.Bitpix {
	case 8:
		raw := make([]byte, n)
		if err = hdu.Read(&raw); err != nil {
			return nil, err
		}
		im.Data = make([]int32, len(raw))
		for i, v := range raw {
			im.Data[i] = int32(v) + bzero
		}
		stored = raw
	case 16:
		raw := make([]int16, n)
		if err = hdu.Read(&raw); err != nil {
			return nil, err
		}
		im.Data = make([]int32, len(raw))
		for i, v := range raw {
			im.Data[i] = int32(v) + bzero
		}
		stored = raw
	case 32:
		raw := make([]int32, n)
		if err = hdu.Read(&raw); err != nil {
			return nil, err
		}
		im.Data = raw
		if bzero != 0 {
			im.Data = make([]int32, len(raw))
			for i, v := range raw {
				im.Data[i] = v + bzero
			}
		}
		stored = raw
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitpix, im.Bitpix)
	}

	for _, k := range hdr.Keys() {
		if c := hdr.Get(k); c != nil {
			im.Cards = append(im.Cards, *c)
		}
	}
	if c, ok := im.Card(CRCCard); ok {
		if err := verify(stored, c); err != nil {
			return nil, err
		}
		im.Checked = true
	}
	return im, nil
}

func write(w io.Writer, bitpix int, dims []int, data interface{}, cards []fitsio.Card) error {
	sum, err := checksum(data)
	if err != nil {
		return err
	}
	cards = append(cards, fitsio.Card{Name: CRCCard, Value: sum, Comment: "CRC-32 of the data unit"})

	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(bitpix, dims)
	defer im.Close()
	if err = im.Header().Append(cards...); err != nil {
		return err
	}
	if err = im.Write(data); err != nil {
		return err
	}
	return fits.Write(im)
}

func dims(width, height, planes int) []int {
	if planes > 1 {
		return []int{width, height, planes}
	}
	return []int{width, height}
}

// WriteU16 writes unsigned 16-bit samples using the BZERO offset convention
func WriteU16(w io.Writer, pix []uint16, width, height int, cards ...fitsio.Card) error {
	cards = append(cards,
		fitsio.Card{Name: "BZERO", Value: 32768},
		fitsio.Card{Name: "BSCALE", Value: 1.0})
	ints := make([]int16, len(pix))
	for i, v := range pix {
		ints[i] = int16(v - 32768)
	}
	return write(w, 16, dims(width, height, 1), ints, cards)
}

// WriteS32 writes signed 32-bit samples, planes consecutive in pix
func WriteS32(w io.Writer, pix []int32, width, height, planes int, cards ...fitsio.Card) error {
	return write(w, 32, dims(width, height, planes), pix, cards)
}

// WriteU8 writes unsigned 8-bit samples, planes consecutive in pix
func WriteU8(w io.Writer, pix []uint8, width, height, planes int, cards ...fitsio.Card) error {
	return write(w, 8, dims(width, height, planes), pix, cards)
}

// WriteFrame writes the input half of the buffer pair f holds for port.
// BGR is written as three planes in B, G, R order and YUV as Y, U, V.
func WriteFrame(w io.Writer, f *frame.Frame, port frame.Port, cards ...fitsio.Card) error {
	wd, ht := f.Info.Width, f.Info.Height
	n := f.Pixels()
	cards = append(cards,
		fitsio.Card{Name: CFACard, Value: f.Info.CFA.String(), Comment: "mosaic pattern"},
		fitsio.Card{Name: PortCard, Value: port.String(), Comment: "domain/representation"})

	switch port {
	case RawU16:
		return WriteU16(w, f.RawU16.In, wd, ht, cards...)
	case RawS32:
		return WriteS32(w, f.RawS32.In, wd, ht, 1, cards...)
	case BGRS32:
		planar := make([]int32, 3*n)
		for i := 0; i < n; i++ {
			for c := 0; c < 3; c++ {
				planar[c*n+i] = f.BGRS32.In[3*i+c]
			}
		}
		return WriteS32(w, planar, wd, ht, 3, cards...)
	case YUVU8:
		planar := make([]uint8, 0, 3*n)
		planar = append(planar, f.YUVU8.In.Y...)
		planar = append(planar, f.YUVU8.In.U...)
		planar = append(planar, f.YUVU8.In.V...)
		return WriteU8(w, planar, wd, ht, 3, cards...)
	}
	return fmt.Errorf("%w: %s", ErrPort, port)
}
