package main

import (
	"fmt"
	"io"

	printready "github.com/alnah/go-printready"
	"github.com/alnah/go-printready/internal/config"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: printready [flags] <input>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render paginated HTML or Markdown documents to print-ready PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML or Markdown file, or an http(s)/file URL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (one input) or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintf(w, "  -w, --workers <n>         Parallel renders (0 = auto, max %d)\n", config.MaxWorkers)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --width <len>         Page width (e.g. 6in, 210mm); overrides @page")
	fmt.Fprintln(w, "      --height <len>        Page height; overrides @page")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --timeout <ms>        PDF capture timeout in milliseconds (0 = none)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "      --engine <s>          Browser backend: rod (default), chromedp")
	fmt.Fprintln(w, "      --paged-js <src>      Paged.js polyfill URL or local path")
	fmt.Fprintf(w, "                            Default: %s\n", printready.DefaultPagedJSURL)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "      --debug               Log every render event to stderr")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w, "      --version             Show version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN           Chrome binary to use")
	fmt.Fprintln(w, "  ROD_NO_SANDBOX=1          Disable the Chrome sandbox (containers, CI)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 general or no input, 2 usage or config, 3 I/O,")
	fmt.Fprintln(w, "  4 browser, 5 pagination")
}
