package pdfmeta

// Notes:
// - Fixtures are built in code with exact xref offsets so pdfcpu parses them
//   without repair. Browser generated PDFs are covered by the root package
//   integration tests.

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// buildPDF returns a minimal valid PDF with the given number of pages.
// A non-empty info adds an Info dictionary with that body.
func buildPDF(t *testing.T, pages int, info string) []byte {
	t.Helper()

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}
	infoNum := 0
	if info != "" {
		objects = append(objects, info)
		infoNum = len(objects)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	trailer := fmt.Sprintf("<< /Size %d /Root 1 0 R", len(objects)+1)
	if infoNum > 0 {
		trailer += fmt.Sprintf(" /Info %d 0 R", infoNum)
	}
	trailer += " >>"
	fmt.Fprintf(&buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return buf.Bytes()
}

func strPtr(s string) *string { return &s }

// ---- TestWrite ----

func TestWrite_StampsMetadata(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	in := buildPDF(t, 2, "")

	out, err := Write(in, Metadata{
		Title:    "Document title",
		Author:   strPtr("Jane Writer"),
		Keywords: SplitKeywords("test, stuff, things"),
		Language: "en",
	}, now)
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, in) {
		t.Error("Write() did not preserve the original bytes")
	}

	info, err := Read(out)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Title", info.Title, "Document title"},
		{"Author", info.Author, "Jane Writer"},
		{"Keywords", info.Keywords, "test stuff things"},
		{"Language", info.Language, "en"},
		{"Creator", info.Creator, Application},
		{"Producer", info.Producer, Application},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
	if !info.CreationDate.Equal(now) {
		t.Errorf("CreationDate = %v, want %v", info.CreationDate, now)
	}
	if !info.ModDate.Equal(now) {
		t.Errorf("ModDate = %v, want %v", info.ModDate, now)
	}
	if info.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", info.PageCount)
	}
}

func TestWrite_AbsentFieldsKeepExistingValues(t *testing.T) {
	t.Parallel()

	in := buildPDF(t, 1, "<< /Title (Browser title) /Creator (Chromium) /Producer (Skia/PDF) >>")

	out, err := Write(in, Metadata{}, time.Now())
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	info, err := Read(out)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}

	if info.Title != "Browser title" {
		t.Errorf("Title = %q, want the existing value", info.Title)
	}
	if info.Author != "" || info.Keywords != "" || info.Language != "" {
		t.Errorf("Author/Keywords/Language = %q/%q/%q, want empty", info.Author, info.Keywords, info.Language)
	}
	if info.Creator != Application || info.Producer != Application {
		t.Errorf("Creator/Producer = %q/%q, want %q", info.Creator, info.Producer, Application)
	}
}

func TestWrite_EmptyAuthorIsWritten(t *testing.T) {
	t.Parallel()

	in := buildPDF(t, 1, "<< /Author (Someone) >>")
	out, err := Write(in, Metadata{Author: strPtr("")}, time.Now())
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	info, err := Read(out)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}
	if info.Author != "" {
		t.Errorf("Author = %q, want empty", info.Author)
	}
}

func TestWrite_UnicodeText(t *testing.T) {
	t.Parallel()

	title := "Résumé (draft) 日本語"
	out, err := Write(buildPDF(t, 1, ""), Metadata{Title: title, Language: "fr-CA"}, time.Now())
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	info, err := Read(out)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}
	if info.Title != title {
		t.Errorf("Title = %q, want %q", info.Title, title)
	}
	if info.Language != "fr-CA" {
		t.Errorf("Language = %q, want fr-CA", info.Language)
	}
}

func TestWrite_Twice(t *testing.T) {
	t.Parallel()

	first, err := Write(buildPDF(t, 3, ""), Metadata{Title: "First"}, time.Now())
	if err != nil {
		t.Fatalf("first Write() unexpected error: %v", err)
	}
	second, err := Write(first, Metadata{Title: "Second"}, time.Now())
	if err != nil {
		t.Fatalf("second Write() unexpected error: %v", err)
	}

	info, err := Read(second)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}
	if info.Title != "Second" || info.PageCount != 3 {
		t.Errorf("Title = %q, PageCount = %d, want Second and 3", info.Title, info.PageCount)
	}
}

func TestWrite_XRefStreamInput(t *testing.T) {
	t.Parallel()

	var compressed bytes.Buffer
	if err := api.Optimize(bytes.NewReader(buildPDF(t, 1, "")), &compressed, newConfig()); err != nil {
		t.Fatalf("Optimize() unexpected error: %v", err)
	}

	out, err := Write(compressed.Bytes(), Metadata{Title: "T", Author: strPtr("Jane"), Language: "en"}, time.Now())
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	info, err := Read(out)
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}
	if info.Title != "T" || info.Author != "Jane" || info.Language != "en" || info.PageCount != 1 {
		t.Errorf("Read() = %+v, want Title=T Author=Jane Language=en PageCount=1", info)
	}
}

func TestWrite_InvalidPDF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a pdf", data: []byte("<html>hello</html>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Write(tt.data, Metadata{Title: "x"}, time.Now())
			if !errors.Is(err, ErrParse) && !errors.Is(err, ErrStructure) {
				t.Errorf("Write() error = %v, want ErrParse or ErrStructure", err)
			}
		})
	}
}

// ---- TestSplitKeywords ----

func TestSplitKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "test, stuff, things", want: []string{"test", "stuff", "things"}},
		{in: " a ,, b ,", want: []string{"a", "b"}},
		{in: "single", want: []string{"single"}},
		{in: "", want: []string{}},
		{in: " , ,", want: []string{}},
	}

	for _, tt := range tests {
		got := SplitKeywords(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitKeywords(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

// ---- TestText ----

func TestWrite_TextRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
	}{
		{name: "plain", title: "Plain"},
		{name: "parentheses and backslash", title: `a (b) \c`},
		{name: "control characters", title: "line\nbreak\ttab"},
		{name: "latin", title: "é"},
		{name: "mixed scripts", title: "Résumé (draft) 日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := Write(buildPDF(t, 1, ""), Metadata{Title: tt.title}, time.Now())
			if err != nil {
				t.Fatalf("Write() unexpected error: %v", err)
			}
			info, err := Read(out)
			if err != nil {
				t.Fatalf("Read() unexpected error: %v", err)
			}
			if info.Title != tt.title {
				t.Errorf("Title = %q, want %q", info.Title, tt.title)
			}
		})
	}
}

func TestRead_ExistingTextEncodings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info string
		want string
	}{
		{name: "escapes", info: `<< /Title (a \(b\) \\c) >>`, want: `a (b) \c`},
		{name: "octal", info: `<< /Title (caf\351) >>`, want: "café"},
		{name: "utf16 hex", info: "<< /Title <FEFF00E965E5> >>", want: "é日"},
		{name: "latin1 hex", info: "<< /Title <4869> >>", want: "Hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info, err := Read(buildPDF(t, 1, tt.info))
			if err != nil {
				t.Fatalf("Read() unexpected error: %v", err)
			}
			if info.Title != tt.want {
				t.Errorf("Title = %q, want %q", info.Title, tt.want)
			}
		})
	}
}
