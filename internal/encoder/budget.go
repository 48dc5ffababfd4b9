package encoder

import "fmt"

// Defaults applied when a caller leaves a budget field unset.
const (
	DefaultMaxPx        = 800
	DefaultQualityFloor = 50

	// StartQuality is the first quality tried and the upper bound of the
	// quality search.
	StartQuality = 85
)

// Budget bounds the text size of one encoded image. It is fixed for the
// whole batch.
type Budget struct {
	CapChars     int // maximum base64 characters; 0 disables fitting
	MaxPx        int // longest edge in pixels
	QualityFloor int // lowest JPEG quality the search accepts
}

// Enabled reports whether a character cap is configured.
func (b Budget) Enabled() bool { return b.CapChars > 0 }

// Validate checks field ranges.
func (b Budget) Validate() error {
	if b.CapChars < 0 {
		return fmt.Errorf("cap_chars must be positive, got %d", b.CapChars)
	}
	if b.MaxPx <= 0 {
		return fmt.Errorf("max_px must be positive, got %d", b.MaxPx)
	}
	if b.QualityFloor < 1 || b.QualityFloor > 100 {
		return fmt.Errorf("quality_floor must be in [1,100], got %d", b.QualityFloor)
	}
	return nil
}

func (b Budget) String() string {
	if !b.Enabled() {
		return fmt.Sprintf("no cap (max_px=%d, quality_floor=%d)", b.MaxPx, b.QualityFloor)
	}
	return fmt.Sprintf("cap_chars=%d, max_px=%d, quality_floor=%d", b.CapChars, b.MaxPx, b.QualityFloor)
}
