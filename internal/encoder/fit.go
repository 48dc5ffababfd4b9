package encoder

import (
	"fmt"
	"image"

	"github.com/AnyUserName/b64jpeg/internal/b64text"
	"github.com/AnyUserName/b64jpeg/internal/normalize"
	"github.com/disintegration/imaging"
)

const (
	shrinkFactor   = 0.85
	maxShrinkSteps = 6
	minShrinkEdge  = 50
)

// NoteUnavailable is attached to results produced without image support.
const NoteUnavailable = "image processing unavailable; no resizing or compression performed"

// Step records one round of the fallback downscale.
type Step struct {
	Width  int
	Height int
	Bytes  int
}

// Result is the outcome of fitting one image to a budget.
type Result struct {
	Data        []byte
	Width       int // 0 when the source was passed through undecoded
	Height      int
	Bytes       int
	Base64Chars int

	Quality  int // quality of Data; 0 when passed through
	Attempts int // encode calls made
	Steps    []Step

	WithinBudget bool
	Passthrough  bool
	Note         string
}

// Fitter re-encodes images until their base64 text fits a character cap.
type Fitter struct {
	enc     Encoder
	capable bool
}

// NewFitter returns a Fitter using enc. When capable is false the Fitter
// never decodes anything and hands back its input unchanged.
func NewFitter(enc Encoder, capable bool) *Fitter {
	return &Fitter{enc: enc, capable: capable}
}

// Capable reports whether the Fitter can decode and re-encode images.
func (f *Fitter) Capable() bool {
	return f != nil && f.capable && f.enc != nil && f.enc.Available()
}

// FitBytes normalizes raw and fits it to b. Without image support raw is
// returned as-is with an explanatory note and no error.
func (f *Fitter) FitBytes(raw []byte, b Budget) (Result, error) {
	if !f.Capable() {
		return passthrough(raw, b, NoteUnavailable), nil
	}
	asset, err := normalize.Normalize(raw)
	if err != nil {
		return Result{}, err
	}
	return f.Fit(asset, b)
}

// Fit searches quality, then size, for an encoding of asset whose base64
// text is at most b.CapChars. The search is best-effort: when nothing fits,
// the last encoding is returned with WithinBudget false.
func (f *Fitter) Fit(asset *normalize.Asset, b Budget) (Result, error) {
	if !f.Capable() {
		return passthrough(asset.Raw, b, NoteUnavailable), nil
	}
	if !b.Enabled() {
		return passthrough(asset.Raw, b, ""), nil
	}
	if err := b.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid budget: %w", err)
	}

	maxBytes := b64text.MaxBytes(b.CapChars)
	var img image.Image = asset.Image
	res := Result{}

	encode := func(q int) ([]byte, error) {
		res.Attempts++
		data, err := f.enc.Encode(img, q)
		if err != nil {
			return nil, fmt.Errorf("encode at quality %d: %w", q, err)
		}
		return data, nil
	}

	w, h := asset.Width, asset.Height
	if max(w, h) > b.MaxPx {
		w, h = fitLongEdge(w, h, b.MaxPx)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	data, err := encode(StartQuality)
	if err != nil {
		return Result{}, err
	}
	quality := StartQuality

	if len(data) > maxBytes {
		lo, hi := b.QualityFloor, StartQuality
		for lo < hi {
			mid := (lo + hi) / 2
			buf, err := encode(mid)
			if err != nil {
				return Result{}, err
			}
			if len(buf) <= maxBytes {
				data, quality = buf, mid
				hi = mid
			} else {
				lo = mid + 1
			}
		}
	}

	if len(data) > maxBytes {
		for n := 0; len(data) > maxBytes && max(w, h) > minShrinkEdge && n < maxShrinkSteps; n++ {
			w = max(1, int(float64(w)*shrinkFactor))
			h = max(1, int(float64(h)*shrinkFactor))
			img = imaging.Resize(img, w, h, imaging.Lanczos)
			if data, err = encode(b.QualityFloor); err != nil {
				return Result{}, err
			}
			quality = b.QualityFloor
			res.Steps = append(res.Steps, Step{Width: w, Height: h, Bytes: len(data)})
		}
	}

	res.Data = data
	res.Width, res.Height = w, h
	res.Bytes = len(data)
	res.Base64Chars = b64text.Chars(len(data))
	res.Quality = quality
	res.WithinBudget = len(data) <= maxBytes
	return res, nil
}

// fitLongEdge scales w×h so the longer edge equals limit.
func fitLongEdge(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, int(float64(h)*float64(limit)/float64(w)))
	}
	return max(1, int(float64(w)*float64(limit)/float64(h))), limit
}

func passthrough(raw []byte, b Budget, note string) Result {
	n := len(raw)
	return Result{
		Data:         raw,
		Bytes:        n,
		Base64Chars:  b64text.Chars(n),
		Passthrough:  true,
		WithinBudget: !b.Enabled() || n <= b64text.MaxBytes(b.CapChars),
		Note:         note,
	}
}
