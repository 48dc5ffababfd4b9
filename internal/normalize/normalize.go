// Package normalize decodes source images into upright, opaque pixel
// buffers ready for re-encoding.
//
// Decoding sniffs the content rather than trusting the file extension, so
// a PNG or WebP saved with a .jpg name still normalizes. The orientation
// recorded in EXIF is applied to the pixels and then dropped: nothing
// downstream writes EXIF back out.
package normalize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError reports bytes that could not be decoded as an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode image: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// Asset is one decoded source image. It lives only while a single file is
// being encoded.
type Asset struct {
	Raw    []byte
	Image  *image.NRGBA // upright, alpha forced opaque
	Format string       // decoder that accepted Raw ("jpeg", "png", ...)
	Width  int
	Height int

	// Orientation is the EXIF value found in Raw. It is already applied to
	// Image.
	Orientation Orientation
}

// Normalize decodes raw, applies its EXIF orientation and flattens alpha.
func Normalize(raw []byte) (*Asset, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Err: fmt.Errorf("empty image (%dx%d)", b.Dx(), b.Dy())}
	}

	orient := ReadOrientation(raw)
	upright := ApplyOrientation(img, orient)
	dropAlpha(upright)

	ub := upright.Bounds()
	return &Asset{
		Raw:         raw,
		Image:       upright,
		Format:      format,
		Width:       ub.Dx(),
		Height:      ub.Dy(),
		Orientation: orient,
	}, nil
}

// dropAlpha discards the alpha channel the way an RGB conversion does:
// colour values are kept as stored and every pixel becomes opaque.
func dropAlpha(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}
