package browser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidLength indicates a CSS length that cannot be printed.
var ErrInvalidLength = errors.New("invalid CSS length")

// pixelsPerUnit maps CSS absolute units to CSS pixels (96 per inch).
var pixelsPerUnit = map[string]float64{
	"px": 1,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"pt": 96.0 / 72,
	"pc": 16,
}

// LengthToInches converts a CSS length such as "6in", "210mm" or "800" to
// inches. A bare number is read as pixels.
func LengthToInches(length string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(length))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidLength)
	}

	unit := "px"
	num := s
	if len(s) > 2 {
		if _, ok := pixelsPerUnit[s[len(s)-2:]]; ok {
			unit = s[len(s)-2:]
			num = strings.TrimSpace(s[:len(s)-2])
		}
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, length)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidLength, length)
	}
	return v * pixelsPerUnit[unit] / 96, nil
}

// paperSize converts the optional width/height pair to inches. Zero
// results mean "not set".
func paperSize(opts PrintOptions) (width, height float64, err error) {
	if opts.Width != "" {
		if width, err = LengthToInches(opts.Width); err != nil {
			return 0, 0, err
		}
	}
	if opts.Height != "" {
		if height, err = LengthToInches(opts.Height); err != nil {
			return 0, 0, err
		}
	}
	return width, height, nil
}
