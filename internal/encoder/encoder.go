package encoder

import (
	"image"
)

// Encoder encodes an image to JPEG bytes.
type Encoder interface {
	// Encode converts the image to bytes at the given quality (1-100).
	Encode(img image.Image, quality int) ([]byte, error)

	// Available reports whether the encoder can be used in this build.
	Available() bool
}
