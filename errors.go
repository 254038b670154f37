package printready

import (
	"errors"
	"fmt"

	"github.com/alnah/go-printready/internal/browser"
)

// Sentinel errors for library operations. The browser related ones are
// shared with the backends so errors.Is works on wrapped causes.
var (
	ErrBrowserConnect = browser.ErrBrowserConnect
	ErrPageCreate     = browser.ErrPageCreate
	ErrNavigation     = browser.ErrNavigation
	ErrPDFCapture     = browser.ErrPrint
	ErrInvalidLength  = browser.ErrInvalidLength

	ErrEmptySource        = errors.New("render source cannot be empty")
	ErrInvalidSource      = errors.New("invalid render source")
	ErrPaginationMarker   = errors.New("paginated output never appeared")
	ErrPaginationScript   = errors.New("cannot load pagination engine")
	ErrCaptureTimeout     = errors.New("PDF capture timed out")
	ErrUnsupportedEvent   = errors.New("unsupported event")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInternal           = errors.New("internal error")
)

// Phase names the pipeline step a render failed in.
type Phase string

// Render phases, in pipeline order.
const (
	PhaseNavigation Phase = "navigation"
	PhasePagination Phase = "pagination"
	PhaseCapture    Phase = "capture"
	PhaseMetadata   Phase = "metadata"
)

// RenderError reports a failed render and the phase it failed in.
type RenderError struct {
	Phase Phase
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// PhaseOf returns the phase of a *RenderError in err's chain, or "".
func PhaseOf(err error) Phase {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Phase
	}
	return ""
}
