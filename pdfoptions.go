package printready

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-printready/internal/browser"
)

// Orientations accepted by PDFOptions.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// PDFOptions are the capture settings a caller may choose. Width and
// Height are CSS lengths ("6in", "210mm"); leaving both empty lets the
// document's @page rule decide the size.
type PDFOptions struct {
	Orientation string
	Width       string
	Height      string
	Timeout     time.Duration
}

// Validate rejects an unknown orientation or an unparsable length.
func (o PDFOptions) Validate() error {
	switch strings.ToLower(o.Orientation) {
	case "", OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidOrientation, o.Orientation, OrientationPortrait, OrientationLandscape)
	}
	for _, l := range []string{o.Width, o.Height} {
		if l == "" {
			continue
		}
		if _, err := browser.LengthToInches(l); err != nil {
			return err
		}
	}
	if o.Timeout < 0 {
		return fmt.Errorf("%w: %v is negative", ErrInvalidTimeout, o.Timeout)
	}
	return nil
}

// buildPrintOptions maps o to the engine option set. Explicit dimensions
// turn off CSS page size preference; margins are always zero because page
// margins belong to the document's CSS.
func buildPrintOptions(o PDFOptions) browser.PrintOptions {
	explicit := o.Width != "" || o.Height != ""

	opts := browser.PrintOptions{
		Landscape:           strings.EqualFold(o.Orientation, OrientationLandscape),
		PrintBackground:     true,
		DisplayHeaderFooter: false,
		PreferCSSPageSize:   !explicit,
		Width:               o.Width,
		Height:              o.Height,
	}
	if o.Timeout > 0 {
		opts.Timeout = o.Timeout
	}
	return opts
}
