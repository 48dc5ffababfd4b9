//go:build ignore

// gen_fixtures creates sample inputs for a manual end-to-end run.
// Usage: go run gen_fixtures.go <output_dir>
//
// Then: b64jpeg encode <output_dir> -r --cap-chars 20000 --csv
// Expect two outputs, one skipped file (broken.jpg) and an upright
// portrait.b64.txt.
package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(filepath.Join(dir, "nested"), 0o755)

	// Large landscape photo stand-in (JPEG, 2400x1600).
	write(filepath.Join(dir, "banner.jpg"), encode(gradient(2400, 1600)))

	// Portrait stored sideways: 600x400 pixels tagged orientation 6.
	write(filepath.Join(dir, "nested", "portrait.JPEG"), withOrientation(encode(gradient(600, 400)), 6))

	// Truncated JPEG; should be skipped with a warning.
	write(filepath.Join(dir, "broken.jpg"), encode(gradient(64, 64))[:40])

	// Not a JPEG name; ignored by discovery.
	write(filepath.Join(dir, "notes.txt"), []byte("not an image\n"))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 4 fixtures in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x ^ y) & 0xff),
				A: 255,
			})
		}
	}
	return img
}

func encode(img image.Image) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// withOrientation inserts a minimal Exif APP1 segment after SOI.
func withOrientation(jpg []byte, o uint16) []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{'I', 'I', 0x2a, 0x00})
	binary.Write(&tiff, binary.LittleEndian, uint32(8))
	binary.Write(&tiff, binary.LittleEndian, uint16(1))
	binary.Write(&tiff, binary.LittleEndian, uint16(0x0112))
	binary.Write(&tiff, binary.LittleEndian, uint16(3))
	binary.Write(&tiff, binary.LittleEndian, uint32(1))
	binary.Write(&tiff, binary.LittleEndian, o)
	binary.Write(&tiff, binary.LittleEndian, uint16(0))
	binary.Write(&tiff, binary.LittleEndian, uint32(0))
	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(jpg[:2])
	out.Write([]byte{0xff, 0xe1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(jpg[2:])
	return out.Bytes()
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		panic(err)
	}
}
