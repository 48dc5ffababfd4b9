package encoder

import (
	"bytes"
	"image"
	"image/jpeg"
)

// JPEGEncoder encodes images to baseline JPEG using Go's standard library.
// Output is deterministic for identical input and quality.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Available() bool { return true }

func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	quality = clampQuality(quality)

	var buf bytes.Buffer
	buf.Grow(64 * 1024) // budgets are small; most results fit without regrowth

	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clampQuality(q int) int {
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	}
	return q
}
