package frameio

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/disintegration/gift"
)

// ErrFormat is returned by Encode for anything but png or jpg
var ErrFormat = errors.New("unknown image format")

// stretch scales v from [0, peak] to [0, 255]
func stretch(v, peak int64) uint8 {
	if v <= 0 || peak <= 0 {
		return 0
	}
	if v >= peak {
		return 255
	}
	return uint8(v * 255 / peak)
}

func gray(vals func(i int) int64, w, h int) *image.Gray {
	n := w * h
	var peak int64
	for i := 0; i < n; i++ {
		if v := vals(i); v > peak {
			peak = v
		}
	}
	im := image.NewGray(image.Rect(0, 0, w, h))
	for i := 0; i < n; i++ {
		im.Pix[i] = stretch(vals(i), peak)
	}
	return im
}

// Preview renders the buffer f holds for port as an 8-bit gray image.
// Raw data is stretched so its brightest sample is white, BGR is shown by
// its green channel and YUV by luma as is.  If width is positive and
// smaller than the frame the image is resized to it, keeping the aspect.
func Preview(f *frame.Frame, port frame.Port, width int) (image.Image, error) {
	w, h := f.Info.Width, f.Info.Height
	var src *image.Gray
	switch port {
	case RawU16:
		src = gray(func(i int) int64 { return int64(f.RawU16.In[i]) }, w, h)
	case RawS32:
		src = gray(func(i int) int64 { return int64(f.RawS32.In[i]) }, w, h)
	case BGRS32:
		src = gray(func(i int) int64 { return int64(f.BGRS32.In[3*i+1]) }, w, h)
	case YUVU8:
		src = &image.Gray{Pix: f.YUVU8.In.Y, Stride: w, Rect: image.Rect(0, 0, w, h)}
	default:
		return nil, fmt.Errorf("%w: %s", ErrPort, port)
	}
	if width <= 0 || width >= w {
		return src, nil
	}
	g := gift.New(gift.Resize(width, 0, gift.LinearResampling))
	dst := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst, nil
}

// ContentType returns the MIME type for an Encode format
func ContentType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "fits":
		return "image/fits"
	}
	return "application/octet-stream"
}

// Encode writes img as png or jpg
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, nil)
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}
