package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/AnyUserName/b64jpeg/internal/b64text"
	"github.com/AnyUserName/b64jpeg/internal/normalize"
)

// sizedEncoder produces quality*w*h/div bytes and records every quality
// it is asked for.
type sizedEncoder struct {
	div   int
	calls []int
}

func (e *sizedEncoder) Available() bool { return true }

func (e *sizedEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	e.calls = append(e.calls, quality)
	b := img.Bounds()
	return make([]byte, quality*b.Dx()*b.Dy()/e.div), nil
}

func assetOf(img *image.NRGBA) *normalize.Asset {
	return &normalize.Asset{
		Image:  img,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// noise returns a deterministic high-entropy image.
func noise(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	var s uint32 = 2463534242
	for i := 0; i < len(img.Pix); i += 4 {
		s ^= s << 13
		s ^= s >> 17
		s ^= s << 5
		img.Pix[i] = uint8(s)
		img.Pix[i+1] = uint8(s >> 8)
		img.Pix[i+2] = uint8(s >> 16)
		img.Pix[i+3] = 0xff
	}
	return img
}

func budget(capChars int) Budget {
	return Budget{CapChars: capChars, MaxPx: DefaultMaxPx, QualityFloor: DefaultQualityFloor}
}

func TestFit_FitsAtStartQuality(t *testing.T) {
	enc := &sizedEncoder{div: 1000}
	f := NewFitter(enc, true)

	// 100x100 at q85 = 850 bytes; cap 2000 chars = 1500 bytes.
	res, err := f.Fit(assetOf(gradient(100, 100)), budget(2000))
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if res.Attempts != 1 || res.Quality != StartQuality {
		t.Errorf("attempts=%d quality=%d, want 1/%d", res.Attempts, res.Quality, StartQuality)
	}
	if !res.WithinBudget || res.Bytes != 850 {
		t.Errorf("bytes=%d within=%v", res.Bytes, res.WithinBudget)
	}
}

func TestFit_BinarySearchNarrowsOnSuccess(t *testing.T) {
	enc := &sizedEncoder{div: 1000}
	f := NewFitter(enc, true)

	// Budget 700 bytes: q<=70 fits. First midpoint 67 fits, so hi keeps
	// dropping until it meets the floor.
	res, err := f.Fit(assetOf(gradient(100, 100)), budget(934))
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	want := []int{85, 67, 58, 54, 52, 51, 50}
	if !equalInts(enc.calls, want) {
		t.Fatalf("qualities tried: got %v, want %v", enc.calls, want)
	}
	if res.Quality != 50 || res.Bytes != 500 || len(res.Steps) != 0 {
		t.Errorf("quality=%d bytes=%d steps=%d", res.Quality, res.Bytes, len(res.Steps))
	}
	if res.Attempts != len(want) {
		t.Errorf("attempts: got %d", res.Attempts)
	}
}

func TestFit_BinarySearchRaisesLoOnFailure(t *testing.T) {
	enc := &sizedEncoder{div: 1000}
	f := NewFitter(enc, true)

	// Budget 600 bytes: the first midpoint 67 fails, lo climbs past each
	// failing midpoint and the search ends without a fit. One shrink round
	// at the floor then fits.
	res, err := f.Fit(assetOf(gradient(100, 100)), budget(800))
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	want := []int{85, 67, 76, 81, 83, 84, 50}
	if !equalInts(enc.calls, want) {
		t.Fatalf("qualities tried: got %v, want %v", enc.calls, want)
	}
	if len(res.Steps) != 1 || res.Width != 85 || res.Height != 85 {
		t.Errorf("steps=%d dims=%dx%d", len(res.Steps), res.Width, res.Height)
	}
	if !res.WithinBudget || res.Quality != 50 {
		t.Errorf("within=%v quality=%d", res.WithinBudget, res.Quality)
	}
}

func TestFit_ResizesToMaxPx(t *testing.T) {
	enc := &sizedEncoder{div: 1 << 30}
	f := NewFitter(enc, true)

	res, err := f.Fit(assetOf(gradient(400, 100)), Budget{CapChars: 1000, MaxPx: 200, QualityFloor: 50})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if res.Width != 200 || res.Height != 50 {
		t.Errorf("landscape: got %dx%d, want 200x50", res.Width, res.Height)
	}

	res, err = f.Fit(assetOf(gradient(90, 300)), Budget{CapChars: 1000, MaxPx: 200, QualityFloor: 50})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if res.Width != 60 || res.Height != 200 {
		t.Errorf("portrait: got %dx%d, want 60x200", res.Width, res.Height)
	}
}

func TestFit_ShrinkStopsAfterSixRounds(t *testing.T) {
	enc := &sizedEncoder{div: 1}
	f := NewFitter(enc, true)

	res, err := f.Fit(assetOf(gradient(200, 100)), budget(100))
	if err != nil {
		t.Fatalf("an unmet budget must not be an error: %v", err)
	}
	if res.WithinBudget {
		t.Fatal("expected the budget to be unreachable")
	}
	if len(res.Steps) != maxShrinkSteps {
		t.Fatalf("steps: got %d, want %d", len(res.Steps), maxShrinkSteps)
	}
	wantW := []int{170, 144, 122, 103, 87, 73}
	for i, s := range res.Steps {
		if s.Width != wantW[i] {
			t.Errorf("step %d width: got %d, want %d", i, s.Width, wantW[i])
		}
	}
	if res.Width != 73 || res.Bytes != res.Steps[5].Bytes {
		t.Errorf("final: %dx%d %d bytes", res.Width, res.Height, res.Bytes)
	}
}

func TestFit_ShrinkStopsAtMinEdge(t *testing.T) {
	enc := &sizedEncoder{div: 1}
	f := NewFitter(enc, true)

	res, err := f.Fit(assetOf(gradient(60, 40)), budget(100))
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	// 60 -> 51 (still > 50) -> 43, then stop.
	if len(res.Steps) != 2 || res.Width != 43 {
		t.Errorf("steps=%d width=%d", len(res.Steps), res.Width)
	}
}

func TestFit_RealJPEG_ShrinkIsMonotonic(t *testing.T) {
	f := NewFitter(&JPEGEncoder{}, true)

	res, err := f.Fit(assetOf(noise(200, 150)), budget(100))
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(res.Steps) == 0 {
		t.Fatal("expected fallback rounds")
	}
	prevEdge, prevBytes := 200, -1
	for i, s := range res.Steps {
		edge := max(s.Width, s.Height)
		if edge >= prevEdge {
			t.Errorf("step %d: edge %d not below %d", i, edge, prevEdge)
		}
		if prevBytes >= 0 && s.Bytes > prevBytes {
			t.Errorf("step %d: bytes grew %d -> %d", i, prevBytes, s.Bytes)
		}
		prevEdge, prevBytes = edge, s.Bytes
	}
}

func TestFit_RealJPEG_WithinBudget(t *testing.T) {
	f := NewFitter(&JPEGEncoder{}, true)
	b := Budget{CapChars: 20000, MaxPx: 800, QualityFloor: 50}

	res, err := f.Fit(assetOf(gradient(1600, 1200)), b)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if max(res.Width, res.Height) > 800 {
		t.Errorf("long edge %d > 800", max(res.Width, res.Height))
	}
	if res.Base64Chars != b64text.Chars(res.Bytes) || res.Bytes != len(res.Data) {
		t.Errorf("inconsistent sizes: %d bytes, %d chars", res.Bytes, res.Base64Chars)
	}
	if res.WithinBudget && res.Base64Chars > b.CapChars {
		t.Errorf("within budget but %d chars > %d", res.Base64Chars, b.CapChars)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if cfg.Width != res.Width || cfg.Height != res.Height {
		t.Errorf("decoded %dx%d, result says %dx%d", cfg.Width, cfg.Height, res.Width, res.Height)
	}
}

func TestFit_Deterministic(t *testing.T) {
	f := NewFitter(&JPEGEncoder{}, true)
	a := assetOf(noise(120, 90))

	r1, err := f.Fit(a, budget(4000))
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	r2, err := f.Fit(a, budget(4000))
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if !bytes.Equal(r1.Data, r2.Data) || r1.Attempts != r2.Attempts {
		t.Error("identical input produced different results")
	}
}

func TestFitBytes_Unavailable(t *testing.T) {
	raw := []byte("not even an image")
	f := NewFitter(&JPEGEncoder{}, false)

	res, err := f.FitBytes(raw, budget(4))
	if err != nil {
		t.Fatalf("unavailable capability must not fail: %v", err)
	}
	if !bytes.Equal(res.Data, raw) || !res.Passthrough {
		t.Error("expected the original bytes back")
	}
	if res.Note == "" {
		t.Error("expected an explanatory note")
	}
	if res.Attempts != 0 {
		t.Errorf("attempts: got %d", res.Attempts)
	}
}

func TestFitBytes_DecodeError(t *testing.T) {
	f := NewFitter(&JPEGEncoder{}, true)
	_, err := f.FitBytes([]byte("garbage"), budget(1000))
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFitBytes_InvalidBudget(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(300, 200), nil); err != nil {
		t.Fatal(err)
	}
	f := NewFitter(&JPEGEncoder{}, true)
	res, err := f.FitBytes(buf.Bytes(), Budget{CapChars: 20000})
	if err == nil {
		t.Fatalf("expected an error, got %dx%d", res.Width, res.Height)
	}
	if res.Width != 0 || res.Data != nil {
		t.Errorf("no result expected on error: %+v", res)
	}
}

func TestBudgetValidate(t *testing.T) {
	cases := []struct {
		b  Budget
		ok bool
	}{
		{Budget{CapChars: 0, MaxPx: 800, QualityFloor: 50}, true},
		{Budget{CapChars: 20000, MaxPx: 800, QualityFloor: 1}, true},
		{Budget{CapChars: -1, MaxPx: 800, QualityFloor: 50}, false},
		{Budget{CapChars: 10, MaxPx: 0, QualityFloor: 50}, false},
		{Budget{CapChars: 10, MaxPx: 800, QualityFloor: 0}, false},
		{Budget{CapChars: 10, MaxPx: 800, QualityFloor: 101}, false},
	}
	for i, c := range cases {
		if err := c.b.Validate(); (err == nil) != c.ok {
			t.Errorf("case %d: err=%v, want ok=%v", i, err, c.ok)
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
