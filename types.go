package printready

import (
	"time"

	"github.com/alnah/go-printready/internal/pdfmeta"
)

// RenderRequest describes one render. Source is a URL or a file path;
// relative paths resolve against WorkingDir (the printer's working
// directory when empty). Timeout bounds the PDF capture when PDF.Timeout
// is zero.
type RenderRequest struct {
	Source     string
	WorkingDir string
	Timeout    time.Duration
	PDF        PDFOptions
}

// Box is a rectangle in points (1/72 inch), rounded to two decimals.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// BreakToken locates where the pagination engine split content: the
// data-ref of the element and an offset inside it.
type BreakToken struct {
	Ref    string `json:"ref"`
	Offset int    `json:"offset"`
}

// PageGeometry describes one paginated page. Width and Height are what the
// engine reported (CSS pixels); the boxes are in points.
type PageGeometry struct {
	ID          string
	Width       float64
	Height      float64
	StartToken  *BreakToken
	EndToken    *BreakToken
	BreakBefore string
	BreakAfter  string
	Position    int
	MediaBox    Box
	CropBox     Box
}

// Length is a CSS length as reported by the pagination engine.
type Length struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// PageSize is the @page size the document declared.
type PageSize struct {
	Width       Length `json:"width"`
	Height      Length `json:"height"`
	Format      string `json:"format"`
	Orientation string `json:"orientation"`
}

// RenderOutcome summarizes pagination.
type RenderOutcome struct {
	PageCount   int
	Orientation string
	Size        *PageSize
	Elapsed     time.Duration
}

// DocumentMetadata is read from the rendered page. Author is nil without an
// author meta tag and Keywords is nil without a keywords meta tag.
type DocumentMetadata struct {
	Title    string
	Language string
	Author   *string
	Keywords []string
	Meta     map[string]string
}

// Artifact is the result of a successful render.
type Artifact struct {
	PDF      []byte
	Info     pdfmeta.Info
	Metadata DocumentMetadata
	Outcome  RenderOutcome
	Pages    []PageGeometry
	URL      string
}
