package main

import (
	"bytes"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"

	printready "github.com/alnah/go-printready"
)

func TestPrintUsage_ListsEveryFlag(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	usage := buf.String()

	f, _, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags() unexpected error: %v", err)
	}
	f.fs.VisitAll(func(fl *flag.Flag) {
		if !strings.Contains(usage, "--"+fl.Name) {
			t.Errorf("usage does not document --%s", fl.Name)
		}
		if fl.Shorthand != "" && !strings.Contains(usage, "-"+fl.Shorthand+", --"+fl.Name) {
			t.Errorf("usage does not document -%s for --%s", fl.Shorthand, fl.Name)
		}
	})

	if !strings.Contains(usage, printready.DefaultPagedJSURL) {
		t.Error("usage does not show the default Paged.js URL")
	}
}
