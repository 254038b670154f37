package assets

import (
	"embed"
	"fmt"
	"strings"
)

// Script names.
const (
	ScriptPrepare  = "prepare"
	ScriptBridge   = "bridge"
	ScriptMetadata = "metadata"
)

//go:embed scripts/*.js
var scripts embed.FS

// ScriptLoader loads in-page scripts by name (without the .js extension).
type ScriptLoader interface {
	LoadScript(name string) (string, error)
}

// EmbeddedLoader loads scripts compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadScript returns the named script with surrounding whitespace removed.
func (e *EmbeddedLoader) LoadScript(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := scripts.ReadFile("scripts/" + name + ".js")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrScriptNotFound, name)
	}

	return strings.TrimSpace(string(content)), nil
}

// Compile-time interface check.
var _ ScriptLoader = (*EmbeddedLoader)(nil)
