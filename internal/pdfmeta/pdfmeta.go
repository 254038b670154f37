// Package pdfmeta stamps document metadata into PDF bytes and reads it back.
//
// Write parses the document with pdfcpu and appends an incremental update
// holding the revised Info dictionary, plus a catalog revision carrying /Lang.
// The original bytes are kept as they are, so tagged structure and page
// content produced by the browser survive untouched.
package pdfmeta

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Application is written as both /Creator and /Producer.
const Application = "PrintReady"

// Sentinel errors.
var (
	ErrParse     = errors.New("cannot parse PDF")
	ErrStructure = errors.New("malformed PDF structure")
)

// Metadata is what Write stamps. Empty Title or Language and a nil Author
// or Keywords leave the corresponding entry as the browser wrote it.
type Metadata struct {
	Title    string
	Author   *string
	Keywords []string
	Language string
}

// Info is the metadata decoded from a PDF.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	Language     string
	CreationDate time.Time
	ModDate      time.Time
	PageCount    int
}

// SplitKeywords splits a comma separated list, trimming items and dropping
// empty ones. The result is never nil.
func SplitKeywords(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var disableConfigDir sync.Once

func newConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func readContext(pdf []byte) (*model.Context, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), newConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if ctx.Root == nil {
		return nil, fmt.Errorf("%w: missing document catalog", ErrStructure)
	}
	return ctx, nil
}

// Write returns pdf with md stamped into its Info dictionary and catalog.
// Creation and modification dates are set to now.
func Write(pdf []byte, md Metadata, now time.Time) ([]byte, error) {
	ctx, err := readContext(pdf)
	if err != nil {
		return nil, err
	}

	info, err := infoDict(ctx)
	if err != nil {
		return nil, err
	}
	if md.Title != "" {
		info.Update("Title", textString(md.Title))
	}
	if md.Author != nil {
		info.Update("Author", textString(*md.Author))
	}
	if md.Keywords != nil {
		info.Update("Keywords", textString(strings.Join(md.Keywords, " ")))
	}
	info.Update("Creator", textString(Application))
	info.Update("Producer", textString(Application))
	date := textString(types.DateString(now))
	info.Update("CreationDate", date)
	info.Update("ModDate", date)
	if err := replaceObject(ctx, ctx.Info.ObjectNumber.Value(), info); err != nil {
		return nil, err
	}

	if md.Language != "" {
		catalog, err := ctx.Catalog()
		if err != nil {
			return nil, fmt.Errorf("%w: reading catalog: %v", ErrStructure, err)
		}
		catalog.Update("Lang", textString(md.Language))
		if err := replaceObject(ctx, ctx.Root.ObjectNumber.Value(), catalog); err != nil {
			return nil, err
		}
	}

	buf := bytes.NewBuffer(append([]byte(nil), pdf...))
	ctx.Write.Increment = true
	ctx.Write.Offset = ctx.Read.FileSize
	if !bytes.HasSuffix(pdf, []byte("\n")) {
		buf.WriteByte('\n')
		ctx.Write.Offset++
	}
	// Keep the xref flavour of the original file.
	ctx.WriteXRefStream = ctx.Read.UsingXRefStreams

	if err := api.WriteIncrement(ctx, buf); err != nil {
		return nil, fmt.Errorf("%w: writing update: %v", ErrStructure, err)
	}
	return buf.Bytes(), nil
}

// infoDict returns the document Info dictionary, creating it when the file
// has none.
func infoDict(ctx *model.Context) (types.Dict, error) {
	if ctx.Info == nil {
		d := types.NewDict()
		ir, err := ctx.IndRefForNewObject(d)
		if err != nil {
			return nil, fmt.Errorf("%w: adding info dictionary: %v", ErrStructure, err)
		}
		ctx.Info = ir
		return d, nil
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return nil, fmt.Errorf("%w: reading info dictionary: %v", ErrStructure, err)
	}
	return d, nil
}

// replaceObject stores d as object objNr and marks it for the update.
func replaceObject(ctx *model.Context, objNr int, d types.Dict) error {
	entry, ok := ctx.FindTableEntryLight(objNr)
	if !ok {
		return fmt.Errorf("%w: no xref entry for object %d", ErrStructure, objNr)
	}
	entry.Object = d
	ctx.Write.IncrementWithObjNr(objNr)
	return nil
}

// textString encodes s as a PDF text string: PDFDocEncoding for printable
// ASCII, UTF-16BE with byte order mark otherwise.
func textString(s string) types.StringLiteral {
	var enc *string
	if isPlainASCII(s) {
		enc, _ = types.Escape(s)
	} else {
		enc, _ = types.EscapedUTF16String(s)
	}
	return types.StringLiteral(*enc)
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 0x7f || (c < 0x20 && c != '\t' && c != '\n' && c != '\r') {
			return false
		}
	}
	return true
}

// Read decodes the Info dictionary, the catalog language and the page count.
func Read(pdf []byte) (*Info, error) {
	ctx, err := readContext(pdf)
	if err != nil {
		return nil, err
	}

	info := &Info{}
	if ctx.Info != nil {
		d, err := ctx.DereferenceDict(*ctx.Info)
		if err != nil {
			return nil, fmt.Errorf("%w: reading info dictionary: %v", ErrStructure, err)
		}
		info.Title = textEntry(ctx, d, "Title")
		info.Author = textEntry(ctx, d, "Author")
		info.Subject = textEntry(ctx, d, "Subject")
		info.Keywords = textEntry(ctx, d, "Keywords")
		info.Creator = textEntry(ctx, d, "Creator")
		info.Producer = textEntry(ctx, d, "Producer")
		info.CreationDate = dateEntry(ctx, d, "CreationDate")
		info.ModDate = dateEntry(ctx, d, "ModDate")
	}

	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("%w: reading catalog: %v", ErrStructure, err)
	}
	info.Language = textEntry(ctx, catalog, "Lang")

	pages, err := ctx.DereferenceDict(catalog["Pages"])
	if err != nil || pages == nil {
		return nil, fmt.Errorf("%w: missing page tree", ErrStructure)
	}
	if count, err := ctx.Dereference(pages["Count"]); err == nil {
		if n, ok := count.(types.Integer); ok {
			info.PageCount = n.Value()
		}
	}

	return info, nil
}

func textEntry(ctx *model.Context, d types.Dict, key string) string {
	obj, ok := d[key]
	if !ok || obj == nil {
		return ""
	}
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	if name, ok := obj.(types.Name); ok {
		return string(name)
	}
	text, err := types.StringOrHexLiteral(obj)
	if err != nil || text == nil {
		return ""
	}
	return *text
}

func dateEntry(ctx *model.Context, d types.Dict, key string) time.Time {
	s := textEntry(ctx, d, key)
	if s == "" {
		return time.Time{}
	}
	t, ok := types.DateTime(s, true)
	if !ok {
		return time.Time{}
	}
	return t
}
