package normalize

import (
	"bytes"
	"image"
	"strconv"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

// Orientation is the EXIF orientation tag value (1-8).
type Orientation int

const (
	OrientNormal     Orientation = 1
	OrientFlipH      Orientation = 2
	OrientRotate180  Orientation = 3
	OrientFlipV      Orientation = 4
	OrientTranspose  Orientation = 5
	OrientRotate90   Orientation = 6 // stored rotated; needs 90° clockwise
	OrientTransverse Orientation = 7
	OrientRotate270  Orientation = 8 // needs 90° counter-clockwise
)

const orientationTagID = 0x0112

// ReadOrientation returns the IFD0 orientation of raw image bytes.
// Missing, malformed, or out-of-range EXIF yields OrientNormal.
func ReadOrientation(raw []byte) (o Orientation) {
	o = OrientNormal

	// go-exif reports some parse failures by panicking.
	defer func() {
		if recover() != nil {
			o = OrientNormal
		}
	}()

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(raw), nil, true)
	if err != nil {
		return OrientNormal
	}

	// IFD0 is visited first; a thumbnail IFD may repeat the tag.
	for _, tag := range tags {
		if tag.TagId != orientationTagID {
			continue
		}
		v := orientationValue(tag)
		if v >= OrientNormal && v <= OrientRotate270 {
			return v
		}
		return OrientNormal
	}
	return OrientNormal
}

func orientationValue(tag exif.ExifTag) Orientation {
	switch v := tag.Value.(type) {
	case []uint16:
		if len(v) > 0 {
			return Orientation(v[0])
		}
	case uint16:
		return Orientation(v)
	}
	if n, err := strconv.Atoi(tag.FormattedFirst); err == nil {
		return Orientation(n)
	}
	return 0
}

// ApplyOrientation returns img transformed so that its pixels are upright.
func ApplyOrientation(img image.Image, o Orientation) *image.NRGBA {
	switch o {
	case OrientFlipH:
		return imaging.FlipH(img)
	case OrientRotate180:
		return imaging.Rotate180(img)
	case OrientFlipV:
		return imaging.FlipV(img)
	case OrientTranspose:
		return imaging.Transpose(img)
	case OrientRotate90:
		return imaging.Rotate270(img)
	case OrientTransverse:
		return imaging.Transverse(img)
	case OrientRotate270:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}
