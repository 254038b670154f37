package printready_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alnah/go-printready"
)

// Example renders a local HTML file (requires Chrome).
func Example() {
	p, err := printready.NewPrinter(printready.WithTimeout(time.Minute))
	if err != nil {
		log.Fatal(err)
	}

	pdf, err := p.PrintFileToPDF(context.Background(), "book.html")
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("book.pdf", pdf, 0o600); err != nil {
		log.Fatal(err)
	}
}

// ExamplePrinter_On logs pages as the pagination engine lays them out.
func ExamplePrinter_On() {
	p, err := printready.NewPrinter()
	if err != nil {
		log.Fatal(err)
	}

	unsubscribe, err := p.On(printready.EventPage, func(ev printready.Event) {
		fmt.Printf("page %d: %.2fx%.2fpt\n", ev.Page.Position+1, ev.Page.MediaBox.Width, ev.Page.MediaBox.Height)
	})
	if err != nil {
		log.Fatal(err)
	}
	defer unsubscribe()

	art, err := p.Render(context.Background(), printready.RenderRequest{Source: "https://example.com/report.html"})
	if err != nil {
		log.Fatalf("%s phase: %v", printready.PhaseOf(err), err)
	}
	fmt.Println(art.Outcome.PageCount, "pages")
}

func ExamplePDFOptions_Validate() {
	err := printready.PDFOptions{Orientation: "sideways"}.Validate()
	fmt.Println(errors.Is(err, printready.ErrInvalidOrientation))
	// Output: true
}

func ExampleResolveWorkers() {
	fmt.Println(printready.ResolveWorkers(3))
	// Output: 3
}
