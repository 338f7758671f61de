// Pixel buffer conversion helpers - no CGo dependencies.

package slideruntime

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
)

// DecodeRegion converts a premultiplied ARGB buffer, as filled by ReadRegion
// or an associated image read, into a straight-alpha image.RGBA.
//
// OpenSlide packs each pixel into a host-order uint32 with alpha in the most
// significant byte. Little-endian hosts are assumed, as on every platform
// OpenSlide ships for.
func DecodeRegion(buf []byte, width, height int64) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, &SlideError{
			Op:      "DecodeRegion",
			Message: fmt.Sprintf("invalid dimensions %dx%d", width, height),
			Err:     ErrRegionOutOfBounds,
		}
	}
	expected := width * height * BytesPerPixel
	if int64(len(buf)) != expected {
		return nil, &SlideError{
			Op:      "DecodeRegion",
			Message: fmt.Sprintf("buffer is %d bytes, want %d for %dx%d", len(buf), expected, width, height),
			Err:     ErrRegionOutOfBounds,
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for i := int64(0); i < width*height; i++ {
		word := binary.LittleEndian.Uint32(buf[i*4:])
		a := uint8(word >> 24)
		r := uint8(word >> 16)
		g := uint8(word >> 8)
		b := uint8(word)

		if a != 0 && a != 255 {
			r = unpremultiply(r, a)
			g = unpremultiply(g, a)
			b = unpremultiply(b, a)
		}

		pix := img.Pix[i*4:]
		pix[0] = r
		pix[1] = g
		pix[2] = b
		pix[3] = a
	}
	return img, nil
}

// unpremultiply scales a premultiplied channel back to straight alpha,
// rounding and clamping to the channel range.
func unpremultiply(c, a uint8) uint8 {
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// EncodePNG encodes an image to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
