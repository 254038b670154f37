package main

import (
	"errors"
	"os"

	printready "github.com/alnah/go-printready"
	"github.com/alnah/go-printready/internal/browser"
	"github.com/alnah/go-printready/internal/config"
	"github.com/alnah/go-printready/internal/logger"
	"github.com/alnah/go-printready/internal/markdown"
)

// Exit codes for the printready CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Every input rendered
	ExitGeneral    = 1 // General/unexpected error, or no input
	ExitUsage      = 2 // Invalid flags, config, or options
	ExitIO         = 3 // File not found, permission denied, write failure
	ExitBrowser    = 4 // Browser launch, navigation or capture errors
	ExitPagination = 5 // Pagination engine errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Pagination errors (exit 5)
	if printready.PhaseOf(err) == printready.PhasePagination ||
		errors.Is(err, printready.ErrPaginationMarker) ||
		errors.Is(err, printready.ErrPaginationScript) {
		return ExitPagination
	}

	// Browser errors (exit 4)
	if errors.Is(err, printready.ErrBrowserConnect) ||
		errors.Is(err, printready.ErrPageCreate) ||
		errors.Is(err, printready.ErrNavigation) ||
		errors.Is(err, printready.ErrPDFCapture) ||
		errors.Is(err, printready.ErrCaptureTimeout) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrWritePDF) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrInvalidDuration) ||
		errors.Is(err, config.ErrInvalidOrientation) ||
		errors.Is(err, logger.ErrInvalidLevel) ||
		errors.Is(err, logger.ErrInvalidFormat) ||
		errors.Is(err, browser.ErrUnknownEngine) ||
		errors.Is(err, markdown.ErrFrontMatter) ||
		errors.Is(err, printready.ErrEmptySource) ||
		errors.Is(err, printready.ErrInvalidSource) ||
		errors.Is(err, printready.ErrInvalidOrientation) ||
		errors.Is(err, printready.ErrInvalidLength) ||
		errors.Is(err, printready.ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}
