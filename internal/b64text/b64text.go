// Package b64text turns encoded JPEG bytes into the text form written to
// disk, optionally wrapped as a data URI.
package b64text

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DataURIPrefix is prepended to the payload when data-URI output is requested.
const DataURIPrefix = "data:image/jpeg;base64,"

// Encode returns the padded standard base64 text of data.
func Encode(data []byte, dataURI bool) string {
	s := base64.StdEncoding.EncodeToString(data)
	if dataURI {
		return DataURIPrefix + s
	}
	return s
}

// Chars is the length of the padded base64 text for n bytes: 4 * ceil(n/3).
func Chars(n int) int {
	if n <= 0 {
		return 0
	}
	return 4 * ((n + 2) / 3)
}

// MaxBytes converts a character cap into the approximate byte budget
// floor(capChars*3/4). It ignores padding, so a result of exactly MaxBytes
// bytes may be up to two characters over capChars (capChars = 4k+2).
func MaxBytes(capChars int) int {
	if capChars <= 0 {
		return 0
	}
	return capChars * 3 / 4
}

// Decode reverses Encode. A data-URI header (any image MIME type) and
// surrounding whitespace are stripped first.
func Decode(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "data:") {
		i := strings.Index(text, ",")
		if i == -1 || !strings.Contains(text[:i], ";base64") {
			return nil, fmt.Errorf("malformed data URI header")
		}
		text = text[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return data, nil
}
