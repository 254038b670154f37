// Package assets holds the JavaScript evaluated inside rendered pages.
//
// Each script is a single function expression, passed unchanged to
// browser.Page.Evaluate:
//
//	prepare   disables Paged.js auto start before the engine is injected
//	bridge    wires engine events to the exposed host hooks and runs preview
//	metadata  reads the document title, language and <meta> entries
//
// Scripts are embedded at compile time and looked up by name.
package assets
