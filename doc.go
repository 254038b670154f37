// Package printready renders paginated HTML documents to print-ready PDF
// using headless Chrome and the Paged.js pagination engine.
//
// # Quick Start
//
// Create a printer and render a file:
//
//	p, err := printready.NewPrinter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pdf, err := p.PrintFileToPDF(ctx, "book.html")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("book.pdf", pdf, 0644)
//
// Markdown files (.md, .markdown) are converted to HTML first. YAML front
// matter (title, author, keywords, lang, stylesheets) becomes the document
// head and ends up in the PDF metadata.
//
// # Render Pipeline
//
// Render goes through four phases. A failure is a *RenderError naming the
// phase, and wraps the cause:
//
//  1. navigation: resolve the source, launch the browser, load the page
//     and wait for the network to go idle
//  2. pagination: inject Paged.js, run its preview and wait for the
//     paginated pages to appear
//  3. capture: print the page to PDF
//  4. metadata: read title, language, author and keywords from the page
//     and stamp them into the PDF
//
// The page and the browser are closed on every path.
//
// # Events
//
// Progress is published synchronously to subscribers:
//
//	unsubscribe, err := p.On(printready.EventPage, func(ev printready.Event) {
//	    fmt.Println("page", ev.Page.Position, ev.Page.MediaBox)
//	})
//	defer unsubscribe()
//
// Subscribers run on rendering goroutines and must not block.
//
// # Configuration
//
// Use functional options on the printer:
//
//	p, err := printready.NewPrinter(
//	    printready.WithTimeout(2 * time.Minute),
//	    printready.WithEngine("chromedp"),
//	    printready.WithPaginationScript("./vendor/paged.polyfill.js"),
//	)
//
// and per-render options on each call:
//
//	pdf, err := p.PrintURLToPDF(ctx, "https://example.com/report",
//	    printready.WithPDFOptions(printready.PDFOptions{Width: "6in", Height: "9in"}),
//	)
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The rod backend downloads a managed
// Chromium on first run (~/.cache/rod/browser/); the chromedp backend uses
// the system installation.
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package printready
