package printready

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alnah/go-printready/internal/browser"
	"github.com/alnah/go-printready/internal/pdfmeta"
)

type pageMetadata struct {
	Title string            `json:"title"`
	Lang  string            `json:"lang"`
	Meta  map[string]string `json:"meta"`
}

// extractMetadata reads the title, language and meta tags of the loaded
// document.
func (p *Printer) extractMetadata(ctx context.Context, page browser.Page) (DocumentMetadata, error) {
	raw, err := page.Evaluate(ctx, p.scripts.metadata)
	if err != nil {
		return DocumentMetadata{}, err
	}
	var pm pageMetadata
	if err := json.Unmarshal(raw, &pm); err != nil {
		return DocumentMetadata{}, fmt.Errorf("decoding document metadata: %w", err)
	}
	return documentMetadata(pm), nil
}

func documentMetadata(pm pageMetadata) DocumentMetadata {
	md := DocumentMetadata{
		Title:    pm.Title,
		Language: pm.Lang,
		Meta:     pm.Meta,
	}
	if md.Meta == nil {
		md.Meta = map[string]string{}
	}
	if author, ok := md.Meta["author"]; ok {
		md.Author = &author
	}
	if keywords, ok := md.Meta["keywords"]; ok {
		md.Keywords = pdfmeta.SplitKeywords(keywords)
	}
	return md
}

// stampMetadata writes md into pdf and decodes the result back.
func (p *Printer) stampMetadata(pdf []byte, md DocumentMetadata) ([]byte, *pdfmeta.Info, error) {
	out, err := pdfmeta.Write(pdf, pdfmeta.Metadata{
		Title:    md.Title,
		Author:   md.Author,
		Keywords: md.Keywords,
		Language: md.Language,
	}, p.now())
	if err != nil {
		return nil, nil, err
	}
	info, err := pdfmeta.Read(out)
	if err != nil {
		return nil, nil, err
	}
	return out, info, nil
}
