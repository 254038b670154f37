package printready

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/alnah/go-printready/internal/fileutil"
	"github.com/alnah/go-printready/internal/markdown"
)

// resolveSource turns a render source into the URL the browser navigates
// to. Markdown files are converted to a temporary HTML document next to the
// source; cleanup removes it and is never nil.
func (p *Printer) resolveSource(ctx context.Context, source, workingDir string) (target string, cleanup func(), err error) {
	cleanup = func() {}

	source = strings.TrimSpace(source)
	if source == "" {
		return "", cleanup, ErrEmptySource
	}
	if workingDir == "" {
		workingDir = p.cfg.workingDir
	}

	path := ""
	if fileutil.IsURL(source) {
		u, err := url.Parse(source)
		if err != nil || !strings.EqualFold(u.Scheme, "file") || !markdown.IsMarkdown(u.Path) {
			return source, cleanup, nil
		}
		path = filepath.FromSlash(u.Path)
	} else {
		path = source
		if !filepath.IsAbs(path) && workingDir != "" {
			path = filepath.Join(workingDir, path)
		}
	}

	if !markdown.IsMarkdown(path) {
		target, err := fileutil.FileURL(workingDir, path)
		return target, cleanup, err
	}

	htmlPath, remove, err := p.md.WriteHTML(ctx, path)
	if err != nil {
		return "", cleanup, fmt.Errorf("preparing %s: %w", path, err)
	}
	target, err = fileutil.FileURL("", htmlPath)
	if err != nil {
		remove()
		return "", cleanup, err
	}
	return target, remove, nil
}
