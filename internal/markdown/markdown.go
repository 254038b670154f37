// Package markdown turns Markdown sources into standalone HTML documents
// that the browser can paginate.
//
// YAML front matter supplies the document metadata the PDF is stamped with:
//
//	---
//	title: Field Guide
//	author: Jane Writer
//	keywords: [birds, field notes]
//	lang: en
//	stylesheets: [print.css]
//	---
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-printready/internal/fileutil"
	"github.com/alnah/go-printready/internal/yamlutil"
)

// Sentinel errors.
var (
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrFrontMatter    = errors.New("invalid front matter")
)

// FrontMatter is the recognized subset of the YAML header.
type FrontMatter struct {
	Title       string   `yaml:"title"`
	Author      *string  `yaml:"author"`
	Keywords    any      `yaml:"keywords"` // list or comma separated string
	Lang        string   `yaml:"lang"`
	Stylesheets []string `yaml:"stylesheets"`
}

// KeywordList returns the keywords as one comma separated value, and false
// when none were given.
func (f *FrontMatter) KeywordList() (string, bool) {
	switch v := f.Keywords.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
		return strings.Join(items, ", "), true
	default:
		return fmt.Sprint(v), true
	}
}

// IsMarkdown reports whether path has a Markdown extension.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Converter converts Markdown to HTML using goldmark.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter creates a Converter with GFM, footnotes and class based
// syntax highlighting.
func NewConverter() *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)
	return &Converter{md: md}
}

// ToHTML converts src, front matter included, to a standalone HTML5
// document. Goldmark has no context support, so conversion runs in a
// goroutine and ctx only bounds the wait.
func (c *Converter) ToHTML(ctx context.Context, src []byte) (string, *FrontMatter, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	front, body, err := yamlutil.SplitFrontMatter(src)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	fm := &FrontMatter{}
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yamlutil.Decode(front, fm); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrFrontMatter, err)
		}
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert(body, &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: document(fm, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	case r := <-done:
		return r.html, fm, r.err
	}
}

// WriteHTML converts the Markdown file at path into a temporary HTML file
// in the same directory, so relative links and images keep resolving.
// The caller must run cleanup once the document has been rendered.
func (c *Converter) WriteHTML(ctx context.Context, path string) (htmlPath string, cleanup func(), err error) {
	src, err := os.ReadFile(path) // #nosec G304 -- render source chosen by the caller
	if err != nil {
		return "", nil, fmt.Errorf("reading markdown source: %w", err)
	}

	doc, _, err := c.ToHTML(ctx, src)
	if err != nil {
		return "", nil, err
	}

	return fileutil.WriteTempFile(filepath.Dir(path), doc, "html")
}

func document(fm *FrontMatter, body string) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	if fm.Lang != "" {
		fmt.Fprintf(&b, "<html lang=\"%s\">\n", html.EscapeString(fm.Lang))
	} else {
		b.WriteString("<html>\n")
	}
	b.WriteString("<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(fm.Title))
	if fm.Author != nil {
		fmt.Fprintf(&b, "<meta name=\"author\" content=\"%s\">\n", html.EscapeString(*fm.Author))
	}
	if kw, ok := fm.KeywordList(); ok {
		fmt.Fprintf(&b, "<meta name=\"keywords\" content=\"%s\">\n", html.EscapeString(kw))
	}
	for _, href := range fm.Stylesheets {
		fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"%s\">\n", html.EscapeString(href))
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")

	return b.String()
}
