// Package yamlutil decodes configuration files and Markdown front matter.
// It is the only package that imports the YAML library.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to 1MB.
var MaxInputSize = 1 << 20

var (
	ErrEmptyInput              = errors.New("yamlutil: nil or empty data")
	ErrNilDestination          = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge           = errors.New("yamlutil: input exceeds maximum size")
	ErrUnterminatedFrontMatter = errors.New("yamlutil: front matter is not closed")
)

var frontMatterDelimiter = []byte("---")

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Decode parses data into v, ignoring unknown keys.
func Decode(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// DecodeStrict parses data into v and rejects unknown keys.
func DecodeStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// SplitFrontMatter separates a leading "---" delimited YAML block from the
// rest of src. Without a leading delimiter, front is nil and body is src.
func SplitFrontMatter(src []byte) (front, body []byte, err error) {
	rest, ok := cutLine(src, frontMatterDelimiter)
	if !ok {
		return nil, src, nil
	}

	for offset := 0; offset < len(rest); {
		end := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest)
		if end >= 0 {
			line = rest[offset : offset+end]
			next = offset + end + 1
		} else {
			line = rest[offset:]
		}
		trimmed := bytes.TrimRight(line, " \t\r")
		if bytes.Equal(trimmed, frontMatterDelimiter) || bytes.Equal(trimmed, []byte("...")) {
			return rest[:offset], rest[next:], nil
		}
		offset = next
	}
	return nil, nil, ErrUnterminatedFrontMatter
}

// cutLine strips a first line equal to prefix (ignoring trailing space).
func cutLine(src, prefix []byte) ([]byte, bool) {
	line, rest, found := bytes.Cut(src, []byte("\n"))
	if !found {
		return nil, false
	}
	if !bytes.Equal(bytes.TrimRight(line, " \t\r"), prefix) {
		return nil, false
	}
	return rest, true
}
